// Package cascade implements cascading authenticated encryption over a
// three-level key hierarchy.
//
// Plaintext is sealed by an ordered list of one to ten independent AEAD
// layers, each keyed with its own derived subkey, so that a break of any
// single cipher does not expose the data. Keys are organized as
//
//	PasswordKey -> MasterKey -> ContentKey
//
// The password key is stretched from a user password with a memory-hard
// hash and wraps the master key. The master key wraps a fresh random
// content key for every encrypted item. Changing the password therefore
// only rewraps the master key; stored data is never re-encrypted.
//
// # Format
//
// Every layer produces a self-framed envelope, using || to denote
// concatenation:
//
//	ENVELOPE := NONCE || CIPHERTEXT || TAG
//
// A cascade of L layers is the left fold of the layer seal functions, so
// the outermost envelope frames the whole blob and each inner envelope is
// recovered by opening layers in reverse order. There is no version byte;
// the layer list fully determines the byte layout.
package cascade
