package cascade

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

const (
	// The 64-byte layer key splits into independent cipher and MAC halves.
	ctrHMACKeySize = 64
	ctrHMACIVSize  = aes.BlockSize // 16 bytes
	ctrHMACTagSize = sha256.Size   // 32 bytes
)

// ctrHMACSuite applies encrypt-then-MAC with AES-256-CTR for
// confidentiality and HMAC-SHA256 for integrity. The tag covers
// iv||ciphertext and is verified in constant time before any decryption.
// Returned layout: [iv||ciphertext||mac].
type ctrHMACSuite struct{}

func (ctrHMACSuite) keySize() int  { return ctrHMACKeySize }
func (ctrHMACSuite) overhead() int { return ctrHMACIVSize + ctrHMACTagSize }

func (s ctrHMACSuite) seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != ctrHMACKeySize {
		return nil, ErrInvalidKey
	}
	encKey, macKey := key[:32], key[32:]

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	iv, err := randomBytes(ctrHMACIVSize)
	if err != nil {
		return nil, err
	}

	ct := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ct, plaintext)

	tag := computeTag(macKey, iv, ct)

	out := make([]byte, 0, ctrHMACIVSize+len(ct)+ctrHMACTagSize)
	out = append(out, iv...)
	out = append(out, ct...)
	out = append(out, tag...)
	return out, nil
}

func (s ctrHMACSuite) open(key, blob []byte) ([]byte, error) {
	if len(blob) < s.overhead() {
		return nil, ErrCiphertextTooShort
	}
	if len(key) != ctrHMACKeySize {
		return nil, ErrInvalidKey
	}
	encKey, macKey := key[:32], key[32:]

	iv := blob[:ctrHMACIVSize]
	tagStart := len(blob) - ctrHMACTagSize
	body := blob[ctrHMACIVSize:tagStart]
	tag := blob[tagStart:]

	expected := computeTag(macKey, iv, body)
	if subtle.ConstantTimeCompare(expected, tag) != 1 {
		return nil, ErrAuthFailure
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	pt := make([]byte, len(body))
	cipher.NewCTR(block, iv).XORKeyStream(pt, body)
	return pt, nil
}

func computeTag(macKey, iv, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}
