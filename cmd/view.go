package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/pkgfile"
	"github.com/yigitkabak/aperium/internal/ui"
	"github.com/yigitkabak/aperium/internal/workflows"
)

var viewPlatform string

func init() {
	viewCmd.Flags().StringVarP(&viewPlatform, "platform", "p", "", "show only one payload: generic, debian, arch or nixos")
}

// resetViewCommandState resets the view command's global state for testing.
func resetViewCommandState() {
	viewPlatform = ""
}

var viewCmd = &cobra.Command{
	Use:   "view <package.apm>",
	Short: "Show the decrypted contents of a package without installing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		packagePath := args[0]
		Logger.Infof("Starting view command for %s", packagePath)

		var only pkgfile.Platform
		if viewPlatform != "" {
			p, err := pkgfile.ParsePlatform(strings.ToLower(viewPlatform))
			if err != nil {
				fmt.Println(ui.Cross() + " " + err.Error() + "\n" +
					ui.Arrow() + " Use one of " + ui.Code.Sprint("generic, debian, arch, nixos"))
				return reported(err)
			}
			only = p
		}

		key, err := loadKey()
		if err != nil {
			fmt.Println(ui.Cross() + " Failed to load your encryption key: " + err.Error())
			return reported(err)
		}

		result, err := workflows.View(context.Background(), workflows.ViewOptions{
			PackagePath: packagePath,
			Key:         key,
			Platform:    only,
		})
		if err != nil {
			fmt.Println(formatInstallError(packagePath, err))
			return reported(err)
		}

		fmt.Print(formatView(result))
		return nil
	},
}

func formatView(result *workflows.ViewResult) string {
	d := result.Descriptor
	description := d.Description
	if description == "" {
		description = "None"
	}

	out := "Package: " + ui.Highlight.Sprint(d.Name) + "\n" +
		"Version: " + d.Version + "\n" +
		"Description: " + description + "\n\n"

	if len(result.Payloads) == 0 && result.Platform == "" {
		return out + ui.Bang() + " No installation scripts or package lists found in this package\n"
	}

	for _, p := range result.Payloads {
		switch {
		case p.Err == nil:
			out += ui.Section(p.Platform.Label(), p.Plaintext)
		case errors.Is(p.Err, aerrors.ErrHashMismatch):
			Logger.Warnf("%s does not match its hash", p.Platform.Label())
			out += ui.Section(p.Platform.Label()+" (hash mismatch)", p.Plaintext)
		default:
			out += ui.Section(p.Platform.Label(), ui.Cross()+" Could not decrypt: "+p.Err.Error())
		}
		out += "\n"
	}

	platforms := pkgfile.Platforms
	if result.Platform != "" {
		platforms = []pkgfile.Platform{result.Platform}
	}
	for _, p := range platforms {
		if _, ok := result.Descriptor.Payload(p); !ok {
			out += ui.Muted.Sprint("No "+p.Label()+" found") + "\n"
		}
	}
	return out
}
