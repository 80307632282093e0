package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/configs"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/ui"
)

// Version is overridden at build time with -ldflags "-X ...cmd.Version=...".
var Version = "1.0.0"

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "aper",
		Short: "Aperium - install encrypted packages across Linux distributions",
		Long: `Aperium installs packages from .apm files. A package carries encrypted
installation scripts for Debian/Ubuntu and Arch Linux, a generic script,
or a NixOS package list. aper picks the payload for the running system,
verifies it and runs it.

Usage:
  aper <command> [flags]

Run 'aper help <command>' for more details on a specific command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)

			if err := configs.LoadSettingsFile(configs.AperiumSettings); err != nil {
				return Logger.ErrorfAndReturn("Failed to load %s: %v", configs.AperiumSettings.SettingsFile, err)
			}
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(viewCmd)
	RootCmd.AddCommand(createCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(forgetCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(detectCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)
}

// reportedError marks an error whose message a command has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// Execute runs the root command and prints any error a command did not
// already explain.
func Execute() error {
	err := RootCmd.Execute()
	var r *reportedError
	if err != nil && !errors.As(err, &r) {
		fmt.Fprintln(os.Stderr, ui.Cross()+" "+err.Error())
	}
	return err
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetInstallCommandState()
	resetCreateCommandState()
	resetHistoryCommandState()
	resetViewCommandState()
	resetConfigCommandState()
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
