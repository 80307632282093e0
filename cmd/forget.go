package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/workflows"
)

var forgetCmd = &cobra.Command{
	Use:   "forget <name>",
	Short: "Remove a package's installation record",
	Long: `Removes the installation record for a package so the next install runs
its payload again. Software the package installed is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		Logger.Infof("Forgetting %s", name)

		err := workflows.Forget(context.Background(), workflows.ForgetOptions{
			Registry: newRegistry(newPrivilegeExecutor()),
			Name:     name,
		})
		switch {
		case errors.Is(err, aerrors.ErrNotInstalled):
			fmt.Println(ui.Cross() + " Package " + ui.Highlight.Sprint(name) + " is not installed\n" +
				ui.Arrow() + " Run " + ui.Code.Sprint("aper list") + " to see installed packages")
			return reported(err)
		case err != nil:
			fmt.Println(ui.Cross() + " Failed to forget " + ui.Highlight.Sprint(name) + "\n" +
				ui.Error.Sprint("Error: ") + err.Error())
			return reported(err)
		}

		fmt.Println(ui.Tick() + " Forgot " + ui.Highlight.Sprint(name) + "\n" +
			ui.Arrow() + " The next " + ui.Code.Sprint("aper install") + " will run its installer again")
		return nil
	},
}
