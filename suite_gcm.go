package cascade

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

const (
	gcmKeySize   = 32
	gcmNonceSize = 12
	gcmTagSize   = 16
)

type gcmSuite struct{}

func (gcmSuite) keySize() int  { return gcmKeySize }
func (gcmSuite) overhead() int { return gcmNonceSize + gcmTagSize }

func (s gcmSuite) seal(key, plaintext []byte) ([]byte, error) {
	aead, err := s.newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randomBytes(gcmNonceSize)
	if err != nil {
		return nil, err
	}
	out := make([]byte, gcmNonceSize, gcmNonceSize+len(plaintext)+gcmTagSize)
	copy(out, nonce)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

func (s gcmSuite) open(key, blob []byte) ([]byte, error) {
	if len(blob) < s.overhead() {
		return nil, ErrCiphertextTooShort
	}
	aead, err := s.newAEAD(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, blob[:gcmNonceSize], blob[gcmNonceSize:], nil)
	if err != nil {
		return nil, ErrAuthFailure
	}
	return pt, nil
}

func (gcmSuite) newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != gcmKeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	return aead, nil
}
