// Package executor runs decrypted installation scripts.
//
// Before running, Normalize makes common package-manager invocations
// non-interactive (apt install -y, pacman -S --noconfirm, ...). The script is
// written to a private temp file, run with the configured shell through the
// privilege executor, and removed afterwards whatever the outcome.
//
// Output is captured rather than streamed. While the script runs a spinner on
// the Progress writer shows that work is happening. On failure the first KB of
// stderr is kept in the returned *ExitError.
package executor
