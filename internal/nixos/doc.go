// Package nixos installs packages on NixOS by editing the system
// configuration instead of running a script.
//
// For a package named demo, Apply writes
// /etc/nixos/aperium-modules/demo-packages.nix listing the packages in
// environment.systemPackages, adds ./aperium-modules/demo-packages.nix to the
// imports list of /etc/nixos/configuration.nix, and offers to run
// nixos-rebuild switch.
//
// configuration.nix is copied to configuration.nix.bak_aper_<unix-millis>
// before anything is written. The imports edit is textual: an existing
// imports = [ ... ]; block gets one more entry, and a file without one gets a
// new block. Applying the same package twice changes nothing the second time.
package nixos
