package pkgfile

import (
	"fmt"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/utils"
	"github.com/yigitkabak/aperium/internal/vault"
)

// Platform names a payload slot in a descriptor.
type Platform string

const (
	PlatformGeneric Platform = "generic"
	PlatformArch    Platform = "arch"
	PlatformDebian  Platform = "debian"
	PlatformNixOS   Platform = "nixos"
)

// Platforms lists every payload slot in display order.
var Platforms = []Platform{PlatformGeneric, PlatformDebian, PlatformArch, PlatformNixOS}

// Label is the human-readable payload name.
func (p Platform) Label() string {
	switch p {
	case PlatformGeneric:
		return "Generic Bash Installation Script"
	case PlatformDebian:
		return "Debian/Ubuntu Installation Script"
	case PlatformArch:
		return "Arch Linux Installation Script"
	case PlatformNixOS:
		return "NixOS Package List"
	default:
		return string(p)
	}
}

// ParsePlatform accepts the lower-case platform names.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

const (
	DefaultVersion     = "1.0.0"
	DefaultDescription = "Aperium Package"
)

// Descriptor is the package.json document inside a package file.
type Descriptor struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`

	GenericScriptEnc  string `json:"genericScriptEnc,omitempty"`
	GenericScriptHash string `json:"genericScriptHash,omitempty"`
	ArchScriptEnc     string `json:"archScriptEnc,omitempty"`
	ArchScriptHash    string `json:"archScriptHash,omitempty"`
	DebianScriptEnc   string `json:"debianScriptEnc,omitempty"`
	DebianScriptHash  string `json:"debianScriptHash,omitempty"`
	NixOSPackagesEnc  string `json:"nixosPackagesEnc,omitempty"`
	NixOSPackagesHash string `json:"nixosPackagesHash,omitempty"`
}

// Payload is one encrypted payload and the hash of its plaintext.
type Payload struct {
	Platform   Platform
	Ciphertext string
	Hash       string
}

// Payload returns the payload for p if the descriptor carries one.
func (d *Descriptor) Payload(p Platform) (Payload, bool) {
	var enc, hash string
	switch p {
	case PlatformGeneric:
		enc, hash = d.GenericScriptEnc, d.GenericScriptHash
	case PlatformArch:
		enc, hash = d.ArchScriptEnc, d.ArchScriptHash
	case PlatformDebian:
		enc, hash = d.DebianScriptEnc, d.DebianScriptHash
	case PlatformNixOS:
		enc, hash = d.NixOSPackagesEnc, d.NixOSPackagesHash
	}
	if enc == "" {
		return Payload{}, false
	}
	return Payload{Platform: p, Ciphertext: enc, Hash: hash}, true
}

// Payloads returns the present payloads in display order.
func (d *Descriptor) Payloads() []Payload {
	var payloads []Payload
	for _, p := range Platforms {
		if payload, ok := d.Payload(p); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

// Select picks the payload to install on a system detected as osID. A generic
// payload always wins; otherwise the payload named after osID is used.
func (d *Descriptor) Select(osID string) (Payload, bool) {
	if payload, ok := d.Payload(PlatformGeneric); ok {
		return payload, true
	}
	switch Platform(osID) {
	case PlatformArch, PlatformDebian, PlatformNixOS:
		return d.Payload(Platform(osID))
	}
	return Payload{}, false
}

// CombinedHash identifies the package contents in the registry. It hashes the
// ciphertexts in the order arch, debian, nixos, generic.
func (d *Descriptor) CombinedHash() string {
	return vault.Hash([]byte(d.ArchScriptEnc + d.DebianScriptEnc + d.NixOSPackagesEnc + d.GenericScriptEnc))
}

func (d *Descriptor) setPayload(p Platform, enc, hash string) {
	switch p {
	case PlatformGeneric:
		d.GenericScriptEnc, d.GenericScriptHash = enc, hash
	case PlatformArch:
		d.ArchScriptEnc, d.ArchScriptHash = enc, hash
	case PlatformDebian:
		d.DebianScriptEnc, d.DebianScriptHash = enc, hash
	case PlatformNixOS:
		d.NixOSPackagesEnc, d.NixOSPackagesHash = enc, hash
	}
}

// ValidateName rejects names that are unsafe as file names.
func ValidateName(name string) error {
	if !utils.IsValidPackageName(name) {
		return fmt.Errorf("%w: %q", aerrors.ErrInvalidPackageName, name)
	}
	return nil
}
