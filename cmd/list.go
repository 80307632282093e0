package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/workflows"
)

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List installed packages",
	Long: `Lists the packages recorded as installed.

An optional glob pattern filters by name.

Examples:
  aper list              # Everything
  aper list "dev-*"      # Names starting with dev-
  aper list "{git,htop}" # Either name`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}
		Logger.Infof("Listing installed packages (pattern=%q)", pattern)

		records, err := workflows.List(context.Background(), workflows.ListOptions{
			Registry: newRegistry(newPrivilegeExecutor()),
			Pattern:  pattern,
		})
		if err != nil {
			fmt.Println(ui.Cross() + " Failed to list installed packages\n" +
				ui.Error.Sprint("Error: ") + err.Error())
			return reported(err)
		}

		if len(records) == 0 {
			if pattern == "" {
				fmt.Println("No packages installed.")
			} else {
				fmt.Println("No installed packages match " + ui.Highlight.Sprint(pattern) + ".")
			}
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%-24s  %s  %s  %s\n",
				rec.Name,
				rec.InstalledAt.Local().Format("2006-01-02 15:04:05"),
				ui.Muted.Sprint(shortHash(rec.Hash)),
				ui.Muted.Sprint("aper "+rec.Version))
		}
		return nil
	},
}
