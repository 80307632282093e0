// Package configs holds the paths and settings aper runs with.
//
// Settings are initialised at startup from the user's home directory:
//
//   - ~/.aperium/key.enc: the hex-encoded payload key
//   - ~/.aperium/installed_packages/: one JSON record per installed package
//   - ~/.aperium/history.jsonl: append-only install history
//   - ~/.aperium/config.toml: optional overrides
//
// APERIUM_HOME relocates the whole directory. Tests replace AperiumSettings
// directly.
//
// # Settings File
//
// config.toml is optional. Keys that are absent keep their defaults:
//
//	[exec]
//	use_sudo = true
//	shell = "bash"
//
//	[nixos]
//	config_path = "/etc/nixos/configuration.nix"
//	modules_dir = "/etc/nixos/aperium-modules"
//
//	[registry]
//	dir = "/home/me/.aperium/installed_packages"
package configs
