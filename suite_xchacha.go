package cascade

import (
	"fmt"

	xchacha "golang.org/x/crypto/chacha20poly1305"
)

const (
	xchachaKeySize   = xchacha.KeySize
	xchachaNonceSize = xchacha.NonceSizeX
	xchachaTagSize   = xchacha.Overhead
)

type xchachaSuite struct{}

func (xchachaSuite) keySize() int  { return xchachaKeySize }
func (xchachaSuite) overhead() int { return xchachaNonceSize + xchachaTagSize }

func (s xchachaSuite) seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != xchachaKeySize {
		return nil, ErrInvalidKey
	}
	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	nonce, err := randomBytes(xchachaNonceSize)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, xchachaNonceSize+len(plaintext)+xchachaTagSize)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

func (s xchachaSuite) open(key, blob []byte) ([]byte, error) {
	if len(blob) < s.overhead() {
		return nil, ErrCiphertextTooShort
	}
	if len(key) != xchachaKeySize {
		return nil, ErrInvalidKey
	}
	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	pt, err := aead.Open(nil, blob[:xchachaNonceSize], blob[xchachaNonceSize:], nil)
	if err != nil {
		return nil, ErrAuthFailure
	}
	return pt, nil
}
