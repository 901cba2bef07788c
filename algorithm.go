package cascade

import "fmt"

// Algorithm names an AEAD suite usable as a cascade layer. The set is
// closed: suites are stateless and statically linked, dispatched by a
// switch rather than through registered objects.
type Algorithm uint8

const (
	// AES256GCM is AES-256 in Galois/Counter Mode. Envelope overhead is a
	// 12-byte nonce plus a 16-byte tag.
	AES256GCM Algorithm = iota + 1

	// XChaCha20Poly1305 is the extended-nonce ChaCha20-Poly1305 variant.
	// Envelope overhead is a 24-byte nonce plus a 16-byte tag.
	XChaCha20Poly1305

	// AES256CTRHMAC is encrypt-then-MAC: AES-256-CTR under one 32-byte
	// subkey, HMAC-SHA256 over iv||ciphertext under an independent 32-byte
	// subkey. Envelope overhead is a 16-byte IV plus a 32-byte tag.
	AES256CTRHMAC
)

// String satisfies the [fmt.Stringer] interface.
func (a Algorithm) String() string {
	switch a {
	case AES256GCM:
		return "aes-256-gcm"
	case XChaCha20Poly1305:
		return "xchacha20-poly1305"
	case AES256CTRHMAC:
		return "aes-256-ctr-hmac-sha256"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a canonical suite name back to its Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "aes-256-gcm":
		return AES256GCM, nil
	case "xchacha20-poly1305":
		return XChaCha20Poly1305, nil
	case "aes-256-ctr-hmac-sha256":
		return AES256CTRHMAC, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, s)
	}
}

// KeySize reports the layer key length in bytes for the suite, or 0 for an
// unknown algorithm.
func (a Algorithm) KeySize() int {
	s, err := suiteOf(a)
	if err != nil {
		return 0
	}
	return s.keySize()
}

// Overhead reports the fixed envelope expansion in bytes for the suite, or
// 0 for an unknown algorithm.
func (a Algorithm) Overhead() int {
	s, err := suiteOf(a)
	if err != nil {
		return 0
	}
	return s.overhead()
}

// cipherSuite is the per-layer seal/open capability. Blobs are self-framed
// as nonce||ciphertext||tag; open must reject anything shorter than
// overhead() with ErrCiphertextTooShort before touching primitives, and
// must never return partial plaintext.
type cipherSuite interface {
	keySize() int
	overhead() int
	seal(key, plaintext []byte) ([]byte, error)
	open(key, blob []byte) ([]byte, error)
}

func suiteOf(a Algorithm) (cipherSuite, error) {
	switch a {
	case AES256GCM:
		return gcmSuite{}, nil
	case XChaCha20Poly1305:
		return xchachaSuite{}, nil
	case AES256CTRHMAC:
		return ctrHMACSuite{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, a)
	}
}
