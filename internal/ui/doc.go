// Package ui provides semantic text formatting for aper output.
//
// Formatters render with color when the terminal supports it. When NO_COLOR
// is set or color is unavailable, Code, Highlight and Muted fall back to
// text decorations (backticks, single quotes, parentheses) so the meaning
// survives in logs and pipes.
//
//	ui.Code.Sprint("aper install demo.apm")
//	ui.Path.Sprint("/etc/nixos/configuration.nix")
//	ui.Highlight.Sprint("debian")
//
// Section frames a decrypted payload for aper view.
package ui
