package vault

import (
	"bytes"
	"fmt"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
)

// pkcs7Pad pads src to a multiple of blockSize. A full block is added when src
// is already aligned so the padding is always removable.
func pkcs7Pad(src []byte, blockSize int) []byte {
	padding := blockSize - (len(src) % blockSize)
	return append(src, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(src []byte, blockSize int) ([]byte, error) {
	length := len(src)
	if length == 0 || length%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length %d", aerrors.ErrDecryptionFailed, length)
	}

	padding := int(src[length-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", aerrors.ErrDecryptionFailed)
	}

	for _, b := range src[length-padding:] {
		if b != byte(padding) {
			return nil, fmt.Errorf("%w: invalid padding", aerrors.ErrDecryptionFailed)
		}
	}
	return src[:length-padding], nil
}
