package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/platform"
	"github.com/yigitkabak/aperium/internal/ui"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the platform aper installs for on this machine",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		id := platform.NewDetector(Logger).Detect()
		fmt.Println(id)

		if id != platform.Debian && id != platform.Arch && id != platform.NixOS {
			Logger.Infof("Only generic scripts can be installed on %s", ui.Highlight.Sprint(id))
		}
	},
}
