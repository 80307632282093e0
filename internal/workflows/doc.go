// Package workflows provides high-level orchestration for aper commands.
//
// Workflows coordinate the package container, platform detector, script
// executor, NixOS patcher and installation registry to implement complete
// user-facing features. Each workflow handles a single command's business
// logic, independent of CLI concerns like flag parsing, spinners and output
// formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Builds the components a workflow needs
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading and verifying the package
//   - Choosing a payload for the running system
//   - Running it and recording the installation
//   - Appending to the install history
//
// # Available Workflows
//
//   - Install: installs an .apm or .apr package
//   - View: decrypts every payload for display without running anything
//   - Create: writes a new package from plaintext payloads
//   - List: lists installation records, optionally filtered by glob
//   - Forget: removes an installation record
//   - History: reads the install history
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Install(ctx, opts)
//	if errors.Is(err, aerrors.ErrHashMismatch) {
//	    // Nothing ran; tell the user the package was tampered with
//	}
//
// Install takes its collaborators as interfaces (PlatformDetector,
// ScriptRunner, NixApplier) so tests can substitute recording fakes.
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// It is passed down to every subprocess aper starts.
package workflows
