package utils

import (
	"regexp"
	"strings"

	"github.com/yigitkabak/aperium/internal/ui"
)

var packageNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidPackageName checks that a package name is safe to use as a file name
// (alphanumeric first character, then alphanumerics, dots, hyphens, underscores).
func IsValidPackageName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return packageNamePattern.MatchString(name)
}
