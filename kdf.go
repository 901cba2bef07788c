package cascade

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"
)

// Reserved derivation purposes. Each level of the key hierarchy gets its
// own purpose so that subkeys never collide across levels for the same
// root material.
const (
	purposePassword = "password"
	purposeMaster   = "master"
	purposeContent  = "content"
)

// deriveSubkey expands 32 bytes of uniform root material into length bytes
// via HKDF-SHA256 expand. Purpose and layer index are bound into the info
// string, so changing either yields an independent subkey, and for fixed
// inputs a shorter output is a prefix of a longer one.
//
// The root must already be uniformly random (password-hash output or
// CSPRNG); there is no extract step.
func deriveSubkey(root []byte, purpose string, index, length int) ([]byte, error) {
	info := "cascade-" + purpose + "-layer-" + strconv.Itoa(index)
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, root, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimitiveUnavailable, err)
	}
	return out, nil
}

// deriveLayerKeys derives one layer key per configured algorithm, keyed by
// (purpose, layerIndex). The caller owns root and must wipe it as soon as
// this returns, on success and on error.
func deriveLayerKeys(root []byte, purpose string, layers []Algorithm) ([]layerKey, error) {
	keys := make([]layerKey, 0, len(layers))
	for i, alg := range layers {
		s, err := suiteOf(alg)
		if err != nil {
			wipeLayerKeys(keys)
			return nil, err
		}
		raw, err := deriveSubkey(root, purpose, i, s.keySize())
		if err != nil {
			wipeLayerKeys(keys)
			return nil, err
		}
		keys = append(keys, newLayerKey(alg, raw))
	}
	return keys, nil
}
