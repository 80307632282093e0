package nixos

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
)

var (
	importsPattern = regexp.MustCompile(`(imports\s*=\s*\[)([\s\S]*?)(\]\s*;)`)
	importsAssign  = regexp.MustCompile(`(?m)^[^#\n]*\bimports\s*=`)
)

// ModuleFileName is the module file written for a package.
func ModuleFileName(name string) string {
	return name + "-packages.nix"
}

// ParsePackageList splits a comma-separated package list, dropping blanks.
func ParsePackageList(list string) []string {
	var pkgs []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}

// RenderModule returns a NixOS module adding pkgs to environment.systemPackages.
func RenderModule(pkgs []string) string {
	return "{ config, pkgs, ... }:\n\n{\n  environment.systemPackages = with pkgs; [\n    " +
		strings.Join(pkgs, "\n    ") +
		"\n  ];\n}\n"
}

// ImportLine returns how configPath refers to modulePath: relative when the
// module sits below the configuration directory, absolute otherwise.
func ImportLine(configPath, modulePath string) string {
	rel, err := filepath.Rel(filepath.Dir(configPath), modulePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return modulePath
	}
	return "./" + filepath.ToSlash(rel)
}

// PatchImports adds importRef to the imports list of content. changed is
// false when importRef is already referenced; synthesized is true when no
// imports block existed and one was created. Imports written as anything
// other than a single literal list are reported as ErrImportPatch.
func PatchImports(content, importRef string) (patched string, changed, synthesized bool, err error) {
	if referencesImport(content, importRef) {
		return content, false, false, nil
	}

	if loc := importsPattern.FindStringSubmatchIndex(content); loc != nil {
		bodyStart, bodyEnd := loc[4], loc[5]
		raw := content[bodyStart:bodyEnd]
		if strings.Contains(raw, "++") || CheckBalanced(raw) != nil {
			return content, false, false, fmt.Errorf("%w: cannot locate imports block", aerrors.ErrImportPatch)
		}
		body := strings.TrimRight(raw, " \t\r\n")
		patched = content[:bodyStart] + body + "\n    " + importRef + "\n  " + content[bodyEnd:]
		return patched, true, false, nil
	}
	if importsAssign.MatchString(content) {
		return content, false, false, fmt.Errorf("%w: cannot locate imports block", aerrors.ErrImportPatch)
	}

	block := "\n  imports = [\n    ./hardware-configuration.nix\n    " + importRef + "\n  ];\n"

	at := skipTrivia(content, lambdaBodyStart(content))
	switch {
	case at == len(content):
		patched = "{ config, pkgs, ... }:\n\n{" + block + "\n" + content + "\n}\n"
		return patched, true, true, nil
	case content[at] == '{':
		return content[:at+1] + block + content[at+1:], true, true, nil
	}
	return content, false, false, fmt.Errorf("%w: cannot locate configuration body", aerrors.ErrImportPatch)
}

// lambdaBodyStart returns the offset just past the ':' of a leading
// "{ config, pkgs, ... }:" argument set, or 0 when content has none.
// Default values may contain nested braces, strings and comments.
func lambdaBodyStart(content string) int {
	i := skipTrivia(content, 0)
	if j := skipIdent(content, i); j > i {
		if k := skipTrivia(content, j); k < len(content) && content[k] == '@' {
			i = skipTrivia(content, k+1)
		}
	}
	if i >= len(content) || content[i] != '{' {
		return 0
	}

	end, ok := matchBrace(content, i)
	if !ok {
		return 0
	}
	i = skipTrivia(content, end+1)
	if i < len(content) && content[i] == '@' {
		i = skipTrivia(content, skipIdent(content, skipTrivia(content, i+1)))
	}
	if i < len(content) && content[i] == ':' {
		return i + 1
	}
	return 0
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case c == '#' || c == '/' && i+1 < len(s) && s[i+1] == '*':
			i = skipTrivia(s, i) - 1
		case c == '"':
			j, ok := skipString(s, i+1)
			if !ok {
				return 0, false
			}
			i = j
		case c == '\'' && i+1 < len(s) && s[i+1] == '\'':
			j, ok := skipIndentedString(s, i+2)
			if !ok {
				return 0, false
			}
			i = j
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// skipTrivia returns the first offset at or after i that is not whitespace
// or a comment. An unterminated block comment runs to the end.
func skipTrivia(s string, i int) int {
	for i < len(s) {
		switch {
		case s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n':
			i++
		case s[i] == '#':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return len(s)
			}
			i += end + 4
		default:
			return i
		}
	}
	return i
}

func skipIdent(s string, i int) int {
	for i < len(s) && (isPathChar(s[i]) && s[i] != '/' && s[i] != '.' && s[i] != '+') {
		i++
	}
	return i
}

// referencesImport reports whether ref appears in content as a whole path.
func referencesImport(content, ref string) bool {
	for offset := 0; ; {
		i := strings.Index(content[offset:], ref)
		if i < 0 {
			return false
		}
		end := offset + i + len(ref)
		if end == len(content) || !isPathChar(content[end]) {
			return true
		}
		offset += i + 1
	}
}

func isPathChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '.' || c == '_' || c == '-' || c == '/' || c == '+'
}

// CheckBalanced reports unbalanced (), [] or {} in Nix source, ignoring
// strings and comments.
func CheckBalanced(content string) error {
	var stack []byte
	line := 1
	closing := map[byte]byte{')': '(', ']': '[', '}': '{'}

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '\n':
			line++
		case c == '#':
			for i < len(content) && content[i] != '\n' {
				i++
			}
			line++
		case c == '/' && i+1 < len(content) && content[i+1] == '*':
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				return fmt.Errorf("%w: unterminated comment on line %d", aerrors.ErrUnbalancedConfig, line)
			}
			line += strings.Count(content[i:i+2+end], "\n")
			i += end + 3
		case c == '"':
			j, ok := skipString(content, i+1)
			if !ok {
				return fmt.Errorf("%w: unterminated string on line %d", aerrors.ErrUnbalancedConfig, line)
			}
			line += strings.Count(content[i:j], "\n")
			i = j
		case c == '\'' && i+1 < len(content) && content[i+1] == '\'':
			j, ok := skipIndentedString(content, i+2)
			if !ok {
				return fmt.Errorf("%w: unterminated string on line %d", aerrors.ErrUnbalancedConfig, line)
			}
			line += strings.Count(content[i:j], "\n")
			i = j
		case c == '(' || c == '[' || c == '{':
			stack = append(stack, c)
		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 || stack[len(stack)-1] != closing[c] {
				return fmt.Errorf("%w: unexpected %q on line %d", aerrors.ErrUnbalancedConfig, c, line)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		return fmt.Errorf("%w: %d unclosed %q", aerrors.ErrUnbalancedConfig, len(stack), stack[len(stack)-1])
	}
	return nil
}

// skipString returns the index of the closing quote of a "..." string
// starting at i.
func skipString(s string, i int) (int, bool) {
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return 0, false
}

// skipIndentedString returns the index of the last quote closing a ''...''
// string whose body starts at i. ''' ''$ and ''\ are escapes.
func skipIndentedString(s string, i int) (int, bool) {
	for ; i+1 < len(s); i++ {
		if s[i] != '\'' || s[i+1] != '\'' {
			continue
		}
		if i+2 < len(s) {
			switch s[i+2] {
			case '\'', '$':
				i += 2
				continue
			case '\\':
				i += 3
				continue
			}
		}
		return i + 1, true
	}
	return 0, false
}
