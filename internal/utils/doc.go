// Package utils provides shared helpers for aperium.
//
// # String Utilities
//
//   - IsValidPackageName: package names become file names in the registry and
//     the NixOS module directory, so they are restricted to a safe alphabet
//   - FormatPaths: formats file paths for human-readable output
//
// # System Utilities
//
//   - IsTermux: reports whether aper runs inside Termux, where sudo is absent
//   - IsRoot: reports whether the process already has elevated rights
//   - PathExists: stat wrapper that separates "missing" from other errors
//
// # Terminal Utilities
//
//   - IsTerminal: checks whether stdin is a terminal
//   - Confirm: asks a yes/no question on a reader/writer pair
package utils
