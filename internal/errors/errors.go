package errors

import "errors"

// Configuration errors indicate a missing or invalid key, package, or path.
var (
	// ErrInvalidKeyLength indicates the encryption key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid encryption key length")

	// ErrInvalidPackage indicates the package archive has no readable package.json.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrInvalidExtension indicates the package path does not end in .apm or .apr.
	ErrInvalidExtension = errors.New("invalid package file extension")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrDestinationExists indicates the output path is already taken.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrInvalidPackageName indicates the package name cannot be used as a file name.
	ErrInvalidPackageName = errors.New("invalid package name")

	// ErrNotInstalled indicates there is no installation record for the package.
	ErrNotInstalled = errors.New("package is not installed")
)

// Cryptographic errors indicate a payload token could not be decrypted.
var (
	// ErrMalformedToken indicates the token is not hex(iv):hex(ciphertext).
	ErrMalformedToken = errors.New("malformed encrypted token")

	// ErrDecryptionFailed indicates the ciphertext or its padding is invalid.
	ErrDecryptionFailed = errors.New("failed to decrypt payload")
)

// Integrity errors indicate a payload does not match its recorded hash.
var (
	// ErrHashMismatch indicates the decrypted payload hash differs from the descriptor.
	ErrHashMismatch = errors.New("payload hash mismatch")
)

// Execution errors indicate a privileged subprocess could not run or failed.
var (
	// ErrSpawnFailed indicates the subprocess could not be started.
	ErrSpawnFailed = errors.New("failed to start process")

	// ErrNonZeroExit indicates the subprocess exited with a non-zero status.
	ErrNonZeroExit = errors.New("process exited with non-zero status")

	// ErrPrivilegeDenied indicates sudo refused to grant elevated rights.
	ErrPrivilegeDenied = errors.New("administrator privileges were denied")

	// ErrRebuildFailed indicates nixos-rebuild failed after the configuration was edited.
	ErrRebuildFailed = errors.New("nixos rebuild failed")
)

// Patch errors indicate a NixOS configuration step failed before the rebuild.
var (
	// ErrModuleDir indicates the NixOS module directory could not be created.
	ErrModuleDir = errors.New("failed to create nixos module directory")

	// ErrBackup indicates the NixOS configuration could not be backed up.
	ErrBackup = errors.New("failed to back up nixos configuration")

	// ErrModuleWrite indicates the generated NixOS module could not be written.
	ErrModuleWrite = errors.New("failed to write nixos module")

	// ErrImportPatch indicates the imports block could not be updated.
	ErrImportPatch = errors.New("failed to update nixos imports")

	// ErrUnbalancedConfig indicates patching would leave unbalanced brackets or braces.
	ErrUnbalancedConfig = errors.New("patched nixos configuration is unbalanced")
)
