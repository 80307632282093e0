// Package logger provides leveled, colored logging for aper commands.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: shows info and debug messages
//
// Warnings and errors are always written to stderr. Warnings carry the
// advisory conditions of the installer (a different version already
// installed, a payload that fails to verify while viewing) which never abort
// a command.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Installing %s", name)
//
// Commands create a logger in PersistentPreRun and pass it to internal
// packages by value. Tests set Out and Err to capture output.
package logger
