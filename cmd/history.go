package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/audit"
	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/workflows"
)

var (
	historyLimit   int
	historyReverse bool
	historyPackage string
	historyJSON    bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "number", "n", 0, "limit number of entries shown")
	historyCmd.Flags().BoolVar(&historyReverse, "reverse", false, "show most recent entries first")
	historyCmd.Flags().StringVar(&historyPackage, "package", "", "filter by package name (glob)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON array")
}

// resetHistoryCommandState resets the history command's global state for testing.
func resetHistoryCommandState() {
	historyLimit = 0
	historyReverse = false
	historyPackage = ""
	historyJSON = false
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the install history",
	Long: `Shows every install, skip, failure, create and forget recorded on this
machine.

Examples:
  aper history                   # Full history
  aper history -n 10 --reverse   # Ten most recent entries
  aper history --package "dev-*" # Filter by package name`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Reading history from %s", audit.LogPath())

		entries, err := workflows.History(context.Background(), workflows.HistoryOptions{
			Package: historyPackage,
			Limit:   historyLimit,
			Reverse: historyReverse,
		})
		if err != nil {
			fmt.Println(ui.Cross() + " Failed to read history: " + err.Error())
			return reported(err)
		}

		if historyJSON {
			if entries == nil {
				entries = []audit.Entry{}
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal entries to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(entries) == 0 {
			fmt.Println("No history entries found.")
			return nil
		}

		for _, e := range entries {
			fmt.Println(formatHistoryEntry(e))
		}
		return nil
	},
}

func formatHistoryEntry(e audit.Entry) string {
	when := e.Timestamp
	if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
		when = t.Local().Format("2006-01-02 15:04:05")
	}

	var outcome string
	switch e.Outcome {
	case audit.OutcomeFailed:
		outcome = ui.Error.Sprint(e.Outcome)
	case audit.OutcomeSkipped:
		outcome = ui.Warning.Sprint(e.Outcome)
	default:
		outcome = ui.Success.Sprint(e.Outcome)
	}

	line := fmt.Sprintf("%-19s  %-8s  %-24s  %s", when, e.Operation, e.Package, outcome)
	if e.Platform != "" {
		line += " " + ui.Muted.Sprint(e.Platform)
	}
	if e.Error != "" {
		line += "\n" + "    " + ui.Error.Sprint("Error: ") + e.Error
	}
	return line
}
