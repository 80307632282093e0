// Package errors provides typed error values for aperium.
//
// Callers match conditions with errors.Is() instead of string matching, which
// keeps the CLI layer independent of the wording used deeper in the stack.
//
// # Error Categories
//
// Errors are grouped the same way the CLI reports them:
//
//   - Configuration errors: bad key, package, or path (ErrInvalidPackage, ErrInvalidExtension)
//   - Cryptographic errors: payload tokens that cannot be opened (ErrMalformedToken)
//   - Integrity errors: payloads that do not match their hash (ErrHashMismatch)
//   - Execution errors: privileged subprocess failures (ErrNonZeroExit, ErrSpawnFailed)
//   - Patch errors: NixOS configuration steps before the rebuild (ErrBackup, ErrImportPatch)
//
// Advisory conditions (a different version already installed, a payload that
// fails to verify while viewing) are not errors. They are logged as warnings.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
//
// Handle them in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrHashMismatch) {
//	    // refuse to run the script
//	}
package errors
