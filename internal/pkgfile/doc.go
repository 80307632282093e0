// Package pkgfile reads and writes aperium package files.
//
// A package file (.apm, or the legacy .apr) is a zip archive holding a single
// package.json descriptor. The descriptor carries the package metadata and up
// to four encrypted payloads, each next to the SHA-256 of its plaintext:
//
//   - generic: a shell script for any Linux
//   - debian, arch: distribution-specific shell scripts
//   - nixos: a comma-separated list of Nix package attribute names
//
// The JSON field names (genericScriptEnc, debianScriptHash, ...) are part of
// the file format and must not change.
package pkgfile
