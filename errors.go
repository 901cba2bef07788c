package cascade

import "errors"

// Every failure surfaced by this package wraps one of these sentinels, so
// callers can classify with errors.Is. When ErrWrongPasswordOrTampered or
// ErrWrongKeyOrTampered is caused by a failed authentication check, the
// error also wraps ErrAuthFailure. Messages never carry key material,
// plaintext, or the index of the cascade layer that failed.
var (
	// ErrInvalidConfig is returned for an empty layer list, a layer list
	// longer than MaxLayers, or an unknown algorithm.
	ErrInvalidConfig = errors.New("cascade: invalid configuration")

	// ErrInvalidParameter is returned for malformed inputs such as a salt
	// of the wrong length or cost parameters below their floor.
	ErrInvalidParameter = errors.New("cascade: invalid parameter")

	// ErrInvalidKey is returned when an AEAD key has the wrong length.
	ErrInvalidKey = errors.New("cascade: invalid key length")

	// ErrCiphertextTooShort is returned when an envelope is smaller than
	// its minimum framing, before any primitive is invoked.
	ErrCiphertextTooShort = errors.New("cascade: ciphertext too short")

	// ErrAuthFailure is returned when an AEAD authentication or integrity
	// check fails at any layer.
	ErrAuthFailure = errors.New("cascade: authentication failed")

	// ErrWrongPasswordOrTampered is returned by UnlockMasterKey and
	// ChangePassword when the password cascade fails to authenticate.
	ErrWrongPasswordOrTampered = errors.New("cascade: wrong password or data tampered")

	// ErrWrongKeyOrTampered is returned by Decrypt when the master or
	// content cascade fails to authenticate.
	ErrWrongKeyOrTampered = errors.New("cascade: wrong key or data tampered")

	// ErrRandomnessUnavailable is returned when the system CSPRNG fails.
	ErrRandomnessUnavailable = errors.New("cascade: system randomness unavailable")

	// ErrPrimitiveUnavailable is returned when the crypto backend refuses
	// an operation.
	ErrPrimitiveUnavailable = errors.New("cascade: crypto primitive unavailable")
)
