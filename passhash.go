package cascade

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// PasswordHash names the memory- or CPU-hard function used to stretch a
// password into 32 bytes of uniform key material.
type PasswordHash uint8

const (
	// Argon2id is the recommended memory-hard password hash.
	Argon2id PasswordHash = iota + 1

	// PBKDF2SHA256 is a CPU-hard alternative for hosts where Argon2's
	// memory requirement is a problem.
	PBKDF2SHA256
)

// String satisfies the [fmt.Stringer] interface.
func (h PasswordHash) String() string {
	switch h {
	case Argon2id:
		return "argon2id"
	case PBKDF2SHA256:
		return "pbkdf2-sha256"
	default:
		return fmt.Sprintf("passwordhash(%d)", uint8(h))
	}
}

// ParsePasswordHash maps a canonical hash name back to its PasswordHash.
func ParsePasswordHash(s string) (PasswordHash, error) {
	switch s {
	case "argon2id":
		return Argon2id, nil
	case "pbkdf2-sha256":
		return PBKDF2SHA256, nil
	default:
		return 0, fmt.Errorf("%w: unknown password hash %q", ErrInvalidParameter, s)
	}
}

const (
	// Argon2idSaltSize is the required salt length for Argon2id.
	Argon2idSaltSize = 16
	// PBKDF2SaltSize is the required salt length for PBKDF2-SHA256.
	PBKDF2SaltSize = 32

	passwordHashSize = 32
)

// Cost floors. Parameters below these are rejected outright rather than
// silently raised.
const (
	MinArgon2idTime      = 1
	MinArgon2idMemoryKiB = 8 * 1024
	MinPBKDF2Iterations  = 100_000
)

// CostParams selects the password hash and its work factors. Only the
// fields for the selected Hash are consulted.
type CostParams struct {
	Hash PasswordHash

	// Argon2id
	Time      uint32 // passes over memory
	MemoryKiB uint32
	Threads   uint8

	// PBKDF2-SHA256
	Iterations uint32
}

// Named presets. On commodity hardware the interactive presets finish well
// under 200ms, moderate takes roughly half a second, and sensitive upwards
// of two seconds.
var (
	Argon2idInteractive = CostParams{Hash: Argon2id, Time: 2, MemoryKiB: 64 * 1024, Threads: 1}
	Argon2idModerate    = CostParams{Hash: Argon2id, Time: 3, MemoryKiB: 256 * 1024, Threads: 1}
	Argon2idSensitive   = CostParams{Hash: Argon2id, Time: 4, MemoryKiB: 1024 * 1024, Threads: 1}

	PBKDF2Interactive = CostParams{Hash: PBKDF2SHA256, Iterations: 310_000}
	PBKDF2Moderate    = CostParams{Hash: PBKDF2SHA256, Iterations: 1_200_000}
	PBKDF2Sensitive   = CostParams{Hash: PBKDF2SHA256, Iterations: 5_000_000}
)

func (p CostParams) validate() error {
	switch p.Hash {
	case Argon2id:
		if p.Time < MinArgon2idTime {
			return fmt.Errorf("%w: argon2id time below floor", ErrInvalidParameter)
		}
		if p.MemoryKiB < MinArgon2idMemoryKiB {
			return fmt.Errorf("%w: argon2id memory below floor", ErrInvalidParameter)
		}
		if p.Threads < 1 {
			return fmt.Errorf("%w: argon2id threads must be at least 1", ErrInvalidParameter)
		}
		return nil
	case PBKDF2SHA256:
		if p.Iterations < MinPBKDF2Iterations {
			return fmt.Errorf("%w: pbkdf2 iterations below floor", ErrInvalidParameter)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown password hash %q", ErrInvalidParameter, p.Hash)
	}
}

func (p CostParams) saltSize() int {
	if p.Hash == PBKDF2SHA256 {
		return PBKDF2SaltSize
	}
	return Argon2idSaltSize
}

// hashPassword stretches password and salt into exactly 32 bytes of
// uniform key material. The password is treated as opaque bytes; a textual
// password must already be its UTF-8 encoding, which is what a Go string
// conversion produces.
func hashPassword(password, salt []byte, p CostParams) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(salt) != p.saltSize() {
		return nil, fmt.Errorf("%w: salt must be %d bytes for %s", ErrInvalidParameter, p.saltSize(), p.Hash)
	}
	switch p.Hash {
	case Argon2id:
		return argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, passwordHashSize), nil
	default:
		return pbkdf2.Key(password, salt, int(p.Iterations), passwordHashSize, sha256.New), nil
	}
}
