package cmd

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/configs"
	"github.com/yigitkabak/aperium/internal/ui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the aper version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		banner := figure.NewColorFigure("Aperium", "standard", "cyan", true)
		banner.Print()
		fmt.Println()

		fmt.Println("aper " + ui.Highlight.Sprint(Version))
		fmt.Println(ui.Muted.Sprint("config " + configs.AperiumSettings.ConfigDir))
	},
}
