package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/pkgfile"
	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/utils"
	"github.com/yigitkabak/aperium/internal/workflows"
)

var (
	createGeneric     string
	createArch        string
	createDebian      string
	createNixOS       string
	createVersion     string
	createDescription string
	createOutput      string
)

var createScriptFlags = map[string]pkgfile.Platform{
	"generic": pkgfile.PlatformGeneric,
	"arch":    pkgfile.PlatformArch,
	"debian":  pkgfile.PlatformDebian,
	"nixos":   pkgfile.PlatformNixOS,
}

func init() {
	createCmd.Flags().StringVar(&createGeneric, "generic", "", "generic bash installation script for every distribution")
	createCmd.Flags().StringVar(&createArch, "arch", "", "installation commands for Arch Linux")
	createCmd.Flags().StringVar(&createDebian, "debian", "", "installation commands for Debian/Ubuntu")
	createCmd.Flags().StringVar(&createNixOS, "nixos", "", "comma-separated NixOS packages (e.g. neofetch, git)")
	createCmd.Flags().StringVar(&createVersion, "version", pkgfile.DefaultVersion, "package version")
	createCmd.Flags().StringVar(&createDescription, "description", pkgfile.DefaultDescription, "package description")
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "", "package file to write (default <name>.apm in the current directory)")
}

// resetCreateCommandState resets the create command's global state for testing.
func resetCreateCommandState() {
	createGeneric = ""
	createArch = ""
	createDebian = ""
	createNixOS = ""
	createVersion = pkgfile.DefaultVersion
	createDescription = pkgfile.DefaultDescription
	createOutput = ""
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new package file",
	Long: `Creates <name>.apm with encrypted installation payloads.

Without script flags aper asks whether to use one generic bash script or
distribution-specific commands, then prompts for each. Blank answers are
left out of the package.

Examples:
  aper create demo                                  # Interactive
  aper create demo --debian "apt install htop"      # Debian/Ubuntu only
  aper create tools --arch "pacman -S git" --nixos "git, htop"`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	Logger.Infof("Starting create command for %s", name)

	if !utils.IsValidPackageName(name) {
		fmt.Println(ui.Cross() + " " + ui.Highlight.Sprint(name) + " is not a valid package name\n" +
			ui.Arrow() + " Use letters, digits, dots, dashes and underscores")
		return reported(fmt.Errorf("%w: %q", aerrors.ErrInvalidPackageName, name))
	}

	var scripts map[pkgfile.Platform]string
	if scriptFlagsChanged(cmd) {
		scripts = make(map[pkgfile.Platform]string, len(createScriptFlags))
		for flag, p := range createScriptFlags {
			scripts[p], _ = cmd.Flags().GetString(flag)
		}
	} else {
		fmt.Printf("Creating a new .apm package named %s...\n", ui.Highlight.Sprint(name))
		scripts = promptScripts(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	key, err := loadKey()
	if err != nil {
		fmt.Println(ui.Cross() + " Failed to load your encryption key: " + err.Error())
		return reported(err)
	}

	spinner, cleanup := startSpinner("Creating package...", verbose)
	defer cleanup()

	result, err := workflows.Create(context.Background(), workflows.CreateOptions{
		Name:        name,
		Version:     createVersion,
		Description: createDescription,
		OutputPath:  createOutput,
		Scripts:     scripts,
		Key:         key,
	})
	if err != nil {
		spinner.FinalMSG = formatCreateError(name, err)
		return reported(err)
	}

	msg := ui.Tick() + " Package " + ui.Highlight.Sprint(name) + " created at " + ui.Path.Sprint(result.Path) + "\n"
	if len(result.Payloads) == 0 {
		msg += ui.Bang() + " The package has no installation payloads"
	} else {
		labels := make([]string, 0, len(result.Payloads))
		for _, p := range result.Payloads {
			labels = append(labels, p.Label())
		}
		msg += "Contains:\n    - " + strings.Join(labels, "\n    - ") + "\n" +
			ui.Arrow() + " Install it with " + ui.Code.Sprint("aper install "+result.Path)
	}
	spinner.FinalMSG = msg
	return nil
}

func scriptFlagsChanged(cmd *cobra.Command) bool {
	for flag := range createScriptFlags {
		if cmd.Flags().Changed(flag) {
			return true
		}
	}
	return false
}

// promptScripts asks for the payloads the way the package format groups
// them: one generic script, or one entry per distribution.
func promptScripts(in io.Reader, out io.Writer) map[pkgfile.Platform]string {
	reader := bufio.NewReader(in)
	ask := func(prompt string) string {
		fmt.Fprintf(out, "%s ", prompt)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	if utils.Confirm(reader, out, "Use a generic bash script for all Linux distributions instead of distribution-specific commands?", false) {
		return map[pkgfile.Platform]string{
			pkgfile.PlatformGeneric: ask("Enter the generic bash installation script (can be left blank):"),
		}
	}

	return map[pkgfile.Platform]string{
		pkgfile.PlatformArch:   ask("Enter installation commands for Arch Linux (can be left blank):"),
		pkgfile.PlatformDebian: ask("Enter installation commands for Debian/Ubuntu (can be left blank):"),
		pkgfile.PlatformNixOS:  ask("Enter NixOS packages to install (comma-separated, e.g., neofetch, git - can be left blank):"),
	}
}

func formatCreateError(name string, err error) string {
	switch {
	case errors.Is(err, aerrors.ErrDestinationExists):
		return ui.Cross() + " A package file for " + ui.Highlight.Sprint(name) + " already exists\n" +
			ui.Arrow() + " Remove it or pass " + ui.Flag.Sprint("--output") + " to write somewhere else"

	case errors.Is(err, aerrors.ErrInvalidExtension):
		return ui.Cross() + " Package files must end in " + ui.Code.Sprint(".apm")

	default:
		return ui.Cross() + " Failed to create package " + ui.Highlight.Sprint(name) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()
	}
}
