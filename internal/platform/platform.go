// Package platform identifies the Linux family aper is running on.
package platform

import (
	"os"
	"strings"

	"github.com/shirou/gopsutil/host"

	logger "github.com/yigitkabak/aperium/internal/logging"
)

const (
	Debian  = "debian"
	Arch    = "arch"
	NixOS   = "nixos"
	Linux   = "linux"
	Unknown = "unknown"

	DefaultOSReleasePath = "/etc/os-release"
)

type Detector struct {
	OSReleasePath string
	// KernelName is consulted when os-release cannot be read.
	KernelName func() (string, error)
	Log        logger.Logger
}

func NewDetector(log logger.Logger) *Detector {
	return &Detector{
		OSReleasePath: DefaultOSReleasePath,
		KernelName:    hostKernelName,
		Log:           log,
	}
}

func hostKernelName() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", err
	}
	return info.OS, nil
}

// Detect returns debian, arch or nixos for those families (matching ID or
// ID_LIKE, in that order), otherwise the raw os-release ID, the kernel name,
// or "unknown". It never fails.
func (d *Detector) Detect() string {
	content, err := os.ReadFile(d.OSReleasePath)
	if err != nil {
		d.Log.Debugf("Could not read %s: %v", d.OSReleasePath, err)
		return d.kernelFallback()
	}

	id, idLike := ParseOSRelease(string(content))
	d.Log.Debugf("os-release ID=%q ID_LIKE=%q", id, idLike)

	switch {
	case id == Debian || strings.Contains(idLike, Debian):
		return Debian
	case id == Arch || strings.Contains(idLike, Arch):
		return Arch
	case id == NixOS || strings.Contains(idLike, NixOS):
		return NixOS
	case id != "":
		d.Log.Warnf("Specific scripts for ID %q are not available. Attempting generic approach.", id)
		return id
	default:
		return Unknown
	}
}

func (d *Detector) kernelFallback() string {
	if d.KernelName == nil {
		return Unknown
	}
	name, err := d.KernelName()
	if err != nil {
		d.Log.Debugf("Could not query kernel name: %v", err)
		return Unknown
	}
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case name == "":
		return Unknown
	case strings.Contains(name, Linux):
		return Linux
	default:
		return name
	}
}

// ParseOSRelease extracts ID and ID_LIKE from os-release content, with
// surrounding quotes removed.
func ParseOSRelease(content string) (id, idLike string) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ID="):
			id = unquote(strings.TrimPrefix(line, "ID="))
		case strings.HasPrefix(line, "ID_LIKE="):
			idLike = unquote(strings.TrimPrefix(line, "ID_LIKE="))
		}
	}
	return id, idLike
}

func unquote(v string) string {
	return strings.NewReplacer(`"`, "", `'`, "").Replace(v)
}
