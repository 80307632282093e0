package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/configs"
	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/ui"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing settings file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// resetConfigCommandState resets the config command's global state for testing.
func resetConfigCommandState() {
	configInitForce = false
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the settings file",
	Long: `Shows the effective settings or writes them to config.toml.

Settings live in $APERIUM_HOME/config.toml (default ~/.aperium/config.toml).
Keys that are left out keep their built-in defaults.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := configs.AperiumSettings
		Logger.Debugf("Showing settings (file %s)", s.SettingsFile)

		fmt.Println(ui.Muted.Sprint("# " + s.SettingsFile))
		if err := configs.EncodeSettings(os.Stdout, s.FileConfig()); err != nil {
			fmt.Println(ui.Cross() + " Failed to encode settings\n" + ui.Error.Sprint("Error: ") + err.Error())
			return reported(err)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective settings to config.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := configs.AperiumSettings
		Logger.Infof("Writing settings to %s", s.SettingsFile)

		if err := configs.WriteSettingsFile(s, configInitForce); err != nil {
			if errors.Is(err, aerrors.ErrDestinationExists) {
				fmt.Println(ui.Cross() + " " + ui.Path.Sprint(s.SettingsFile) + " already exists\n" +
					ui.Arrow() + " Pass " + ui.Flag.Sprint("--force") + " to overwrite it")
			} else {
				fmt.Println(ui.Cross() + " Failed to write settings\n" + ui.Error.Sprint("Error: ") + err.Error())
			}
			return reported(err)
		}

		fmt.Println(ui.Tick() + " Settings written to " + ui.Path.Sprint(s.SettingsFile))
		return nil
	},
}
