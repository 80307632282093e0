package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm prints prompt followed by a [Y/n] or [y/N] hint to w and reads one
// line from r. An empty answer (or EOF) selects def.
func Confirm(r io.Reader, w io.Writer, prompt string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(w, "%s %s: ", prompt, hint)

	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(w)
		return def
	}

	response = strings.TrimSpace(strings.ToLower(response))
	switch response {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
