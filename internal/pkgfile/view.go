package pkgfile

import (
	"fmt"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/vault"
)

// PayloadView is the outcome of decrypting one payload for display.
type PayloadView struct {
	Platform  Platform
	Plaintext string
	Verified  bool
	Err       error
}

// Open decrypts a payload and checks it against its recorded hash. A hash
// mismatch returns the plaintext together with ErrHashMismatch.
func Open(p Payload, key []byte) (string, error) {
	plaintext, err := vault.Decrypt(p.Ciphertext, key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s payload: %w", p.Platform, err)
	}
	if !vault.Verify(plaintext, p.Hash) {
		return string(plaintext), fmt.Errorf("%w: %s payload", aerrors.ErrHashMismatch, p.Platform)
	}
	return string(plaintext), nil
}

// View opens every present payload. Failures are reported per payload.
func View(d *Descriptor, key []byte) []PayloadView {
	var views []PayloadView
	for _, p := range d.Payloads() {
		plaintext, err := Open(p, key)
		views = append(views, PayloadView{
			Platform:  p.Platform,
			Plaintext: plaintext,
			Verified:  err == nil,
			Err:       err,
		})
	}
	return views
}
