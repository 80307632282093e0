package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/yigitkabak/aperium/internal/configs"
	"github.com/yigitkabak/aperium/internal/privilege"
	"github.com/yigitkabak/aperium/internal/registry"
	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/vault"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// loadKey reads the encryption key, creating one on first use.
func loadKey() ([]byte, error) {
	path := configs.AperiumSettings.KeyFile
	Logger.Debugf("Loading encryption key from %s", path)
	return vault.LoadOrCreateKey(path, Logger)
}

func newPrivilegeExecutor() *privilege.Executor {
	return privilege.New(configs.AperiumSettings, Logger)
}

func newRegistry(priv *privilege.Executor) *registry.Registry {
	return &registry.Registry{
		Dir:  configs.AperiumSettings.RegistryDir,
		Priv: priv,
		Log:  Logger,
	}
}

// shortHash keeps the first 12 characters of a hex digest for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
