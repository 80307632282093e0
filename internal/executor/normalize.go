package executor

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	flag string
	// aliases also count as the flag being present.
	aliases []string
}

var yesAliases = []string{"--yes", "--assume-yes", "-y"}

var rewrites = []rewrite{
	{regexp.MustCompile(`\bapt\s+install\b`), "-y", yesAliases},
	{regexp.MustCompile(`\bapt-get\s+install\b`), "-y", yesAliases},
	{regexp.MustCompile(`\bpacman\s+-S[A-Za-z]*`), "--noconfirm", nil},
	{regexp.MustCompile(`\bdnf\s+install\b`), "-y", yesAliases},
	{regexp.MustCompile(`\byum\s+install\b`), "-y", yesAliases},
	{regexp.MustCompile(`\bzypper\s+install\b`), "-y", append([]string{"--no-confirm"}, yesAliases...)},
}

// Normalize adds the non-interactive flag to apt, apt-get, pacman, dnf, yum
// and zypper install commands. Commands that already carry the flag are left
// alone, so Normalize(Normalize(s)) == Normalize(s).
func Normalize(script string) string {
	for _, r := range rewrites {
		script = r.apply(script)
	}
	return script
}

func (r rewrite) apply(s string) string {
	locs := r.re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[1]])
		if !r.present(s[loc[1]:]) {
			b.WriteString(" " + r.flag)
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// present reports whether the flag already appears in the rest of the command.
func (r rewrite) present(rest string) bool {
	if i := strings.IndexAny(rest, "\n;&|"); i >= 0 {
		rest = rest[:i]
	}
	for _, field := range strings.Fields(rest) {
		if field == r.flag {
			return true
		}
		for _, alias := range r.aliases {
			if field == alias {
				return true
			}
		}
	}
	return false
}
