// Package privilege runs commands and file operations with elevated rights.
//
// All sudo use in aper goes through an Executor. When UseSudo is false
// (Termux, running as root, or exec.use_sudo = false in config.toml) the same
// calls run directly, which is also how tests exercise them.
//
// File writes under sudo go to a private temp file first and are then put in
// place with sudo install -o root -g root. The destination ends up owned by
// root, never by the invoking user, and the temp file is removed afterwards.
package privilege
