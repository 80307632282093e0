package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yigitkabak/aperium/internal/configs"
	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/executor"
	"github.com/yigitkabak/aperium/internal/nixos"
	"github.com/yigitkabak/aperium/internal/platform"
	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/utils"
	"github.com/yigitkabak/aperium/internal/workflows"
)

var (
	installForce  bool
	installYes    bool
	installNoSudo bool
)

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "reinstall even if the same package is already installed")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "rebuild NixOS without asking")
	installCmd.Flags().BoolVar(&installNoSudo, "no-sudo", false, "run installation commands without sudo")
}

// resetInstallCommandState resets the install command's global state for testing.
func resetInstallCommandState() {
	installForce = false
	installYes = false
	installNoSudo = false
}

var installCmd = &cobra.Command{
	Use:     "install <package.apm>",
	Aliases: []string{"i"},
	Short:   "Install a package file",
	Long: `Installs an .apm (or legacy .apr) package.

A generic script is used when the package has one. Otherwise aper detects
the running distribution and picks the Debian/Ubuntu script, the Arch Linux
script or the NixOS package list. The payload is decrypted and checked
against its hash before anything runs.

Packages that are already installed with identical contents are skipped.

Examples:
  aper install demo.apm            # Install a package
  aper i demo.apm --force          # Run the installer again
  aper install tools.apm --yes     # Rebuild NixOS without asking`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	packagePath := args[0]
	Logger.Infof("Starting install command for %s", packagePath)

	key, err := loadKey()
	if err != nil {
		fmt.Println(ui.Cross() + " Failed to load your encryption key: " + err.Error())
		return reported(err)
	}

	settings := configs.AperiumSettings
	priv := newPrivilegeExecutor()
	if installNoSudo {
		Logger.Debugf("Sudo disabled by --no-sudo")
		priv.UseSudo = false
	}

	scripts := &executor.Executor{
		Priv:  priv,
		Shell: settings.Shell,
		Log:   Logger,
	}
	if !verbose && !debug && utils.IsTerminal() {
		scripts.Progress = os.Stderr
	}

	confirm := confirmRebuild(os.Stdin, os.Stdout, utils.IsTerminal())
	priv.Notice = func() {
		fmt.Println(ui.Arrow() + " Aperium needs administrator (sudo) privileges for this operation. You may be prompted for your password.")
	}

	result, err := workflows.Install(context.Background(), workflows.InstallOptions{
		PackagePath: packagePath,
		Key:         key,
		ToolVersion: Version,
		Detector:    platform.NewDetector(Logger),
		Scripts:     scripts,
		Nix:         nixos.NewPatcher(settings, priv, confirm, Logger),
		Registry:    newRegistry(priv),
		Priv:        priv,
		Force:       installForce,
		Log:         Logger,
	})
	if result != nil && result.Script != nil && result.Script.Stdout != "" {
		fmt.Print(ui.EnsureNewline(result.Script.Stdout))
	}
	if err != nil {
		fmt.Println(formatInstallError(packagePath, err))
		return reported(err)
	}

	fmt.Println(formatInstallResult(packagePath, result))
	return nil
}

// confirmRebuild returns the NixOS rebuild prompt. It defaults to yes when
// asked on a terminal. Without a terminal the rebuild only runs with --yes.
func confirmRebuild(r io.Reader, w io.Writer, interactive bool) func(string) bool {
	return func(prompt string) bool {
		if installYes {
			return true
		}
		if !interactive {
			return false
		}
		return utils.Confirm(r, w, prompt, true)
	}
}

func formatInstallResult(packagePath string, result *workflows.InstallResult) string {
	name := ui.Highlight.Sprint(result.Name)

	if result.Skipped {
		return ui.Tick() + " Package " + name + " is already installed and up to date\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("aper install --force "+packagePath) + " to install it again"
	}

	if result.Payload == "" {
		platformName := result.Platform
		if platformName == "" {
			platformName = platform.Unknown
		}
		return ui.Bang() + " No installation script in " + name + " for " + ui.Highlight.Sprint(platformName) + "\n" +
			ui.Arrow() + " The package was recorded as installed " + ui.Muted.Sprint(shortHash(result.Hash))
	}

	msg := ui.Tick() + " Package " + name + " installed successfully " + ui.Muted.Sprint(result.Payload.Label())
	if result.Nix != nil {
		switch result.Nix.State {
		case nixos.StateRebuilt:
			msg += "\n" + ui.Arrow() + " NixOS rebuilt with " + strings.Join(result.Nix.Packages, ", ")
		case nixos.StateRebuildSkipped:
			msg += "\n" + ui.Arrow() + " Added " + ui.Path.Sprint(result.Nix.ModulePath) + " to your configuration\n" +
				ui.Bang() + " Run " + ui.Code.Sprint("sudo nixos-rebuild switch") + " to apply it"
		case nixos.StateNothingToDo:
			msg += "\n" + ui.Arrow() + " The NixOS package list is empty, nothing was changed"
		}
	}
	return msg
}

func formatInstallError(packagePath string, err error) string {
	path := ui.Path.Sprint(packagePath)

	var exitErr *executor.ExitError
	switch {
	case errors.Is(err, aerrors.ErrInvalidExtension):
		return ui.Cross() + " " + path + " is not an Aperium package\n" +
			ui.Arrow() + " Package files end in " + ui.Code.Sprint(".apm") + " or " + ui.Code.Sprint(".apr")

	case errors.Is(err, aerrors.ErrFileNotFound):
		return ui.Cross() + " Package file " + path + " not found"

	case errors.Is(err, aerrors.ErrInvalidPackage), errors.Is(err, aerrors.ErrInvalidPackageName):
		return ui.Cross() + " " + path + " is not a valid package\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, aerrors.ErrHashMismatch):
		return ui.Cross() + " Integrity check failed for " + path + "\n" +
			ui.Arrow() + " The decrypted script does not match its recorded hash. Nothing was run."

	case errors.Is(err, aerrors.ErrDecryptionFailed), errors.Is(err, aerrors.ErrMalformedToken):
		return ui.Cross() + " Failed to decrypt " + path + "\n" +
			ui.Arrow() + " Was it created with a different encryption key? Nothing was run."

	case errors.Is(err, aerrors.ErrPrivilegeDenied):
		return ui.Cross() + " Administrator privileges are required to install packages\n" +
			ui.Arrow() + " Run as root or pass " + ui.Flag.Sprint("--no-sudo") + " if no privileges are needed"

	case errors.As(err, &exitErr):
		msg := ui.Cross() + " Installation script for " + ui.Highlight.Sprint(exitErr.Label) +
			" exited with code " + fmt.Sprint(exitErr.Code)
		if stderr := strings.TrimSpace(exitErr.Stderr); stderr != "" {
			msg += "\n" + ui.Error.Sprint("Error: ") + stderr
		}
		return msg

	case errors.Is(err, aerrors.ErrSpawnFailed):
		return ui.Cross() + " Failed to start the installation script\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, aerrors.ErrRebuildFailed):
		return ui.Cross() + " nixos-rebuild failed. Your configuration was updated but not applied.\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, aerrors.ErrModuleDir), errors.Is(err, aerrors.ErrBackup),
		errors.Is(err, aerrors.ErrModuleWrite), errors.Is(err, aerrors.ErrImportPatch),
		errors.Is(err, aerrors.ErrUnbalancedConfig):
		return ui.Cross() + " Failed to update the NixOS configuration\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	default:
		return ui.Cross() + " Installation of " + path + " failed\n" +
			ui.Error.Sprint("Error: ") + err.Error()
	}
}
