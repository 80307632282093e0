package utils

import (
	"fmt"
	"os"
)

// IsTermux reports whether the process runs inside Termux on Android.
func IsTermux() bool {
	_, ok := os.LookupEnv("TERMUX_VERSION")
	return ok
}

// IsRoot reports whether the process runs with uid 0.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// PathExists returns true if path exists, false if it does not, and an error
// for anything else (permission problems and the like).
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking %s: %w", path, err)
}
