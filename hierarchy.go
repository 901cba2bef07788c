package cascade

import (
	"errors"
	"fmt"
)

// PasswordKeyParams are the inputs to DerivePasswordKey. Password is
// opaque bytes; convert a textual password with []byte(s), which yields
// its UTF-8 encoding. Salt is optional: when nil a fresh one of the hash's
// required length is generated and returned inside the PasswordKey.
type PasswordKeyParams struct {
	Password []byte
	Salt     []byte
	Cost     CostParams
}

// DerivePasswordKey stretches the password into 32 bytes of root material
// and expands it into one layer key per configured algorithm. The root
// material is wiped before returning, on every path.
func (c *Cascade) DerivePasswordKey(params PasswordKeyParams) (*PasswordKey, error) {
	if err := params.Cost.validate(); err != nil {
		return nil, err
	}

	salt := params.Salt
	if salt == nil {
		var err error
		if salt, err = randomBytes(params.Cost.saltSize()); err != nil {
			return nil, err
		}
	} else {
		salt = append([]byte(nil), salt...)
	}

	base, err := hashPassword(params.Password, salt, params.Cost)
	if err != nil {
		return nil, err
	}
	defer Zero(base)

	keys, err := deriveLayerKeys(base, purposePassword, c.layers)
	if err != nil {
		return nil, err
	}
	return &PasswordKey{Salt: salt, Cost: params.Cost, layerKeys: keys}, nil
}

// GenerateMasterKey creates fresh random master material, derives the
// master layer keys from it, and wraps the raw material through the
// password cascade. The raw material is wiped before returning. The
// encrypted blob is the only durable form of the master key.
func (c *Cascade) GenerateMasterKey(pk *PasswordKey) (*MasterKey, []byte, error) {
	raw, err := randomBytes(rootKeySize)
	if err != nil {
		return nil, nil, err
	}
	defer Zero(raw)

	keys, err := deriveLayerKeys(raw, purposeMaster, c.layers)
	if err != nil {
		return nil, nil, err
	}
	wrapped, err := c.seal(pk.layerKeys, raw)
	if err != nil {
		wipeLayerKeys(keys)
		return nil, nil, err
	}
	return &MasterKey{layerKeys: keys}, wrapped, nil
}

// UnlockMasterKey opens an encrypted master key blob with the password
// cascade and rederives the master layer keys. An authentication failure
// means the password is wrong or the blob was modified; the two are
// indistinguishable on purpose.
func (c *Cascade) UnlockMasterKey(encryptedMasterKey []byte, pk *PasswordKey) (*MasterKey, error) {
	raw, err := c.open(pk.layerKeys, encryptedMasterKey)
	if err != nil {
		if errors.Is(err, ErrAuthFailure) {
			return nil, fmt.Errorf("%w: %w", ErrWrongPasswordOrTampered, err)
		}
		return nil, err
	}
	defer Zero(raw)

	if len(raw) != rootKeySize {
		return nil, ErrWrongPasswordOrTampered
	}
	keys, err := deriveLayerKeys(raw, purposeMaster, c.layers)
	if err != nil {
		return nil, err
	}
	return &MasterKey{layerKeys: keys}, nil
}

// Encrypt seals data under a fresh per-item content key and wraps that key
// through the master cascade. Both the raw content material and the
// content layer keys are wiped before returning.
func (c *Cascade) Encrypt(data []byte, mk *MasterKey) (EncryptedData, error) {
	raw, err := randomBytes(rootKeySize)
	if err != nil {
		return EncryptedData{}, err
	}
	defer Zero(raw)

	contentKeys, err := deriveLayerKeys(raw, purposeContent, c.layers)
	if err != nil {
		return EncryptedData{}, err
	}
	defer wipeLayerKeys(contentKeys)

	wrapped, err := c.seal(mk.layerKeys, raw)
	if err != nil {
		return EncryptedData{}, err
	}
	ciphertext, err := c.seal(contentKeys, data)
	if err != nil {
		return EncryptedData{}, err
	}
	return EncryptedData{WrappedContentKey: wrapped, Ciphertext: ciphertext}, nil
}

// Decrypt unwraps the content key through the master cascade, then opens
// the payload with the rederived content layer keys. A tampered wrapped
// key fails before the payload is touched.
func (c *Cascade) Decrypt(data EncryptedData, mk *MasterKey) ([]byte, error) {
	raw, err := c.open(mk.layerKeys, data.WrappedContentKey)
	if err != nil {
		if errors.Is(err, ErrAuthFailure) {
			return nil, fmt.Errorf("%w: %w", ErrWrongKeyOrTampered, err)
		}
		return nil, err
	}
	defer Zero(raw)

	if len(raw) != rootKeySize {
		return nil, ErrWrongKeyOrTampered
	}
	contentKeys, err := deriveLayerKeys(raw, purposeContent, c.layers)
	if err != nil {
		return nil, err
	}
	defer wipeLayerKeys(contentKeys)

	plaintext, err := c.open(contentKeys, data.Ciphertext)
	if err != nil {
		if errors.Is(err, ErrAuthFailure) {
			return nil, fmt.Errorf("%w: %w", ErrWrongKeyOrTampered, err)
		}
		return nil, err
	}
	return plaintext, nil
}

// ChangePassword rewraps the master material under a new password key.
// Only the wrapper changes: the master material is preserved, so data
// encrypted before the change stays decryptable and nothing is
// re-encrypted.
func (c *Cascade) ChangePassword(encryptedMasterKey []byte, oldPK, newPK *PasswordKey) ([]byte, error) {
	raw, err := c.open(oldPK.layerKeys, encryptedMasterKey)
	if err != nil {
		if errors.Is(err, ErrAuthFailure) {
			return nil, fmt.Errorf("%w: %w", ErrWrongPasswordOrTampered, err)
		}
		return nil, err
	}
	defer Zero(raw)

	if len(raw) != rootKeySize {
		return nil, ErrWrongPasswordOrTampered
	}
	return c.seal(newPK.layerKeys, raw)
}
