package cascade

import (
	"bytes"
	"errors"
	"testing"
)

func newTestCascade(tb testing.TB, layers ...Algorithm) *Cascade {
	tb.Helper()
	c, err := New(Config{Layers: layers})
	if err != nil {
		tb.Fatalf("new: %v", err)
	}
	return c
}

func newTestKeys(tb testing.TB, c *Cascade, password string) (*PasswordKey, *MasterKey, []byte) {
	tb.Helper()
	pk, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte(password), Cost: testArgon2})
	if err != nil {
		tb.Fatalf("derive password key: %v", err)
	}
	mk, emk, err := c.GenerateMasterKey(pk)
	if err != nil {
		tb.Fatalf("generate master key: %v", err)
	}
	return pk, mk, emk
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newTestCascade(t, AES256GCM, XChaCha20Poly1305)
	_, mk, _ := newTestKeys(t, c, "round trip")

	for _, size := range []int{0, 1, 16, 1023, 1024, 65537, 1 << 20} {
		pt := randBytes(t, size)
		ed, err := c.Encrypt(pt, mk)
		if err != nil {
			t.Fatalf("size %d: encrypt: %v", size, err)
		}
		if len(ed.Ciphertext) != size+c.Overhead() {
			t.Fatalf("size %d: ciphertext length %d, want %d", size, len(ed.Ciphertext), size+c.Overhead())
		}
		if len(ed.WrappedContentKey) != rootKeySize+c.Overhead() {
			t.Fatalf("size %d: wrapped key length %d, want %d", size, len(ed.WrappedContentKey), rootKeySize+c.Overhead())
		}
		got, err := c.Decrypt(ed, mk)
		if err != nil {
			t.Fatalf("size %d: decrypt: %v", size, err)
		}
		if !bytes.Equal(pt, got) {
			t.Fatalf("size %d: plaintext mismatch", size)
		}
	}
}

func TestEncryptDecryptAllByteValues(t *testing.T) {
	c := newTestCascade(t, AES256CTRHMAC)
	_, mk, _ := newTestKeys(t, c, "all bytes")

	pt := make([]byte, 256)
	for i := range pt {
		pt[i] = byte(i)
	}
	ed, err := c.Encrypt(pt, mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := c.Decrypt(ed, mk)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(pt, got) {
		t.Fatal("plaintext mismatch over full byte range")
	}
}

func TestEncryptProducesDistinctOutputs(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	_, mk, _ := newTestKeys(t, c, "freshness")

	pt := []byte("same plaintext")
	a, err := c.Encrypt(pt, mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := c.Encrypt(pt, mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(a.WrappedContentKey, b.WrappedContentKey) {
		t.Fatal("two encryptions share a wrapped content key")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatal("two encryptions share a ciphertext")
	}
}

// Single-layer AES-256-GCM over "Hello, Cascade!": 12-byte nonce plus
// 15-byte body plus 16-byte tag is a 43-byte ciphertext.
func TestScenarioSingleLayerGCM(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	_, mk, _ := newTestKeys(t, c, "scenario one")

	pt := []byte("Hello, Cascade!")
	ed, err := c.Encrypt(pt, mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if len(ed.Ciphertext) != 43 {
		t.Fatalf("ciphertext length %d, want 43", len(ed.Ciphertext))
	}
	got, err := c.Decrypt(ed, mk)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(pt, got) {
		t.Fatal("plaintext mismatch")
	}
}

// Two layers over an empty plaintext: ((0+16+12)+16+24) = 68 bytes.
func TestScenarioTwoLayerEmpty(t *testing.T) {
	c := newTestCascade(t, AES256GCM, XChaCha20Poly1305)
	_, mk, _ := newTestKeys(t, c, "scenario two")

	ed, err := c.Encrypt(nil, mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if len(ed.Ciphertext) != 68 {
		t.Fatalf("ciphertext length %d, want 68", len(ed.Ciphertext))
	}
	got, err := c.Decrypt(ed, mk)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty plaintext, got %d bytes", len(got))
	}
}

func TestScenarioFiveLayerTamper(t *testing.T) {
	c := newTestCascade(t, AES256GCM, AES256GCM, AES256GCM, AES256GCM, AES256GCM)
	_, mk, _ := newTestKeys(t, c, "scenario five")

	pt := []byte("Five layers deep")
	ed, err := c.Encrypt(pt, mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := c.Decrypt(ed, mk)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(pt, got) {
		t.Fatal("plaintext mismatch")
	}

	mut := EncryptedData{
		WrappedContentKey: ed.WrappedContentKey,
		Ciphertext:        append([]byte(nil), ed.Ciphertext...),
	}
	mut.Ciphertext[len(mut.Ciphertext)-1] ^= 0x01
	if _, err := c.Decrypt(mut, mk); !errors.Is(err, ErrWrongKeyOrTampered) {
		t.Fatalf("expected ErrWrongKeyOrTampered, got %v", err)
	}
}

func TestDecryptRejectsAnyBitFlip(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	_, mk, _ := newTestKeys(t, c, "bit flips")

	ed, err := c.Encrypt(randBytes(t, 16), mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	for i := range ed.Ciphertext {
		for bit := 0; bit < 8; bit++ {
			mut := EncryptedData{
				WrappedContentKey: ed.WrappedContentKey,
				Ciphertext:        append([]byte(nil), ed.Ciphertext...),
			}
			mut.Ciphertext[i] ^= 1 << bit
			if _, err := c.Decrypt(mut, mk); !errors.Is(err, ErrWrongKeyOrTampered) {
				t.Fatalf("ciphertext byte %d bit %d: expected ErrWrongKeyOrTampered, got %v", i, bit, err)
			}
		}
	}
	for i := range ed.WrappedContentKey {
		for bit := 0; bit < 8; bit++ {
			mut := EncryptedData{
				WrappedContentKey: append([]byte(nil), ed.WrappedContentKey...),
				Ciphertext:        ed.Ciphertext,
			}
			mut.WrappedContentKey[i] ^= 1 << bit
			if _, err := c.Decrypt(mut, mk); !errors.Is(err, ErrWrongKeyOrTampered) {
				t.Fatalf("wrapped key byte %d bit %d: expected ErrWrongKeyOrTampered, got %v", i, bit, err)
			}
		}
	}
}

func TestUnlockMasterKeyEquivalence(t *testing.T) {
	c := newTestCascade(t, XChaCha20Poly1305, AES256GCM)
	pk, mk1, emk := newTestKeys(t, c, "equivalence")

	mk2, err := c.UnlockMasterKey(emk, pk)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}

	// The two keys must be interchangeable in both directions.
	pt := []byte("interchangeable")
	ed, err := c.Encrypt(pt, mk1)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := c.Decrypt(ed, mk2)
	if err != nil {
		t.Fatalf("decrypt with unlocked key: %v", err)
	}
	if !bytes.Equal(pt, got) {
		t.Fatal("plaintext mismatch")
	}
	ed2, err := c.Encrypt(pt, mk2)
	if err != nil {
		t.Fatalf("encrypt with unlocked key: %v", err)
	}
	if got, err := c.Decrypt(ed2, mk1); err != nil || !bytes.Equal(pt, got) {
		t.Fatalf("decrypt with original key: %v", err)
	}
}

func TestUnlockMasterKeyWrongPassword(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	pk, _, emk := newTestKeys(t, c, "right password")

	wrong, err := c.DerivePasswordKey(PasswordKeyParams{
		Password: []byte("wrong password"),
		Salt:     pk.Salt,
		Cost:     pk.Cost,
	})
	if err != nil {
		t.Fatalf("derive wrong password key: %v", err)
	}
	if _, err := c.UnlockMasterKey(emk, wrong); !errors.Is(err, ErrWrongPasswordOrTampered) {
		t.Fatalf("expected ErrWrongPasswordOrTampered, got %v", err)
	}

	mut := append([]byte(nil), emk...)
	mut[0] ^= 0x01
	if _, err := c.UnlockMasterKey(mut, pk); !errors.Is(err, ErrWrongPasswordOrTampered) {
		t.Fatalf("tampered blob: expected ErrWrongPasswordOrTampered, got %v", err)
	}
}

// Cross-session: only salt, cost params, the encrypted master key, and the
// encrypted data survive; a fresh instance with the same password must
// reopen everything.
func TestScenarioCrossSession(t *testing.T) {
	layers := []Algorithm{AES256GCM, AES256CTRHMAC}

	c1 := newTestCascade(t, layers...)
	pk1, err := c1.DerivePasswordKey(PasswordKeyParams{Password: []byte("pw"), Cost: testArgon2})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	mk1, emk, err := c1.GenerateMasterKey(pk1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	ed, err := c1.Encrypt([]byte("x"), mk1)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	salt := append([]byte(nil), pk1.Salt...)
	cost := pk1.Cost
	pk1.Wipe()
	mk1.Wipe()

	c2 := newTestCascade(t, layers...)
	pk2, err := c2.DerivePasswordKey(PasswordKeyParams{Password: []byte("pw"), Salt: salt, Cost: cost})
	if err != nil {
		t.Fatalf("rederive: %v", err)
	}
	mk2, err := c2.UnlockMasterKey(emk, pk2)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	got, err := c2.Decrypt(ed, mk2)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, []byte("x")) {
		t.Fatal("plaintext mismatch across sessions")
	}
}

func TestScenarioChangePassword(t *testing.T) {
	c := newTestCascade(t, AES256GCM, XChaCha20Poly1305)
	pkOld, mk, emk := newTestKeys(t, c, "old password")

	ed, err := c.Encrypt([]byte("kept across rotation"), mk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	pkNew, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte("new password"), Cost: testArgon2})
	if err != nil {
		t.Fatalf("derive new: %v", err)
	}
	rewrapped, err := c.ChangePassword(emk, pkOld, pkNew)
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if bytes.Equal(rewrapped, emk) {
		t.Fatal("rewrapped master key equals the old blob")
	}

	mk2, err := c.UnlockMasterKey(rewrapped, pkNew)
	if err != nil {
		t.Fatalf("unlock with new password: %v", err)
	}
	got, err := c.Decrypt(ed, mk2)
	if err != nil {
		t.Fatalf("decrypt after rotation: %v", err)
	}
	if !bytes.Equal(got, []byte("kept across rotation")) {
		t.Fatal("plaintext mismatch after rotation")
	}

	if _, err := c.UnlockMasterKey(rewrapped, pkOld); !errors.Is(err, ErrWrongPasswordOrTampered) {
		t.Fatalf("old password on rewrapped blob: expected ErrWrongPasswordOrTampered, got %v", err)
	}
}

func TestChangePasswordWrongOldKey(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	_, _, emk := newTestKeys(t, c, "actual")

	impostor, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte("impostor"), Cost: testArgon2})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if _, err := c.ChangePassword(emk, impostor, impostor); !errors.Is(err, ErrWrongPasswordOrTampered) {
		t.Fatalf("expected ErrWrongPasswordOrTampered, got %v", err)
	}
}

func TestDerivePasswordKeyGeneratesSalt(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	pk, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte("pw"), Cost: testArgon2})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(pk.Salt) != Argon2idSaltSize {
		t.Fatalf("generated salt length %d, want %d", len(pk.Salt), Argon2idSaltSize)
	}
	pk2, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte("pw"), Cost: testPBKDF2})
	if err != nil {
		t.Fatalf("derive pbkdf2: %v", err)
	}
	if len(pk2.Salt) != PBKDF2SaltSize {
		t.Fatalf("generated salt length %d, want %d", len(pk2.Salt), PBKDF2SaltSize)
	}
}

func TestDerivePasswordKeyRejectsBadInputs(t *testing.T) {
	c := newTestCascade(t, AES256GCM)
	if _, err := c.DerivePasswordKey(PasswordKeyParams{
		Password: []byte("pw"),
		Salt:     make([]byte, 8),
		Cost:     testArgon2,
	}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("short salt: expected ErrInvalidParameter, got %v", err)
	}
	if _, err := c.DerivePasswordKey(PasswordKeyParams{
		Password: []byte("pw"),
		Cost:     CostParams{Hash: Argon2id, Time: 0, MemoryKiB: MinArgon2idMemoryKiB, Threads: 1},
	}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("cost below floor: expected ErrInvalidParameter, got %v", err)
	}
}

func TestDerivePasswordKeySameInputsSameKeys(t *testing.T) {
	c := newTestCascade(t, AES256GCM, AES256CTRHMAC)
	salt := randBytes(t, Argon2idSaltSize)
	a, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte("pw"), Salt: salt, Cost: testArgon2})
	if err != nil {
		t.Fatalf("derive a: %v", err)
	}
	b, err := c.DerivePasswordKey(PasswordKeyParams{Password: []byte("pw"), Salt: salt, Cost: testArgon2})
	if err != nil {
		t.Fatalf("derive b: %v", err)
	}
	for i := range a.layerKeys {
		if !bytes.Equal(a.layerKeys[i].raw, b.layerKeys[i].raw) {
			t.Fatalf("layer %d: rederived keys differ", i)
		}
	}
}

func TestWipePasswordKey(t *testing.T) {
	c := newTestCascade(t, AES256GCM, XChaCha20Poly1305)
	pk, mk, _ := newTestKeys(t, c, "to be wiped")

	raws := make([][]byte, 0, len(pk.layerKeys)+len(mk.layerKeys))
	for i := range pk.layerKeys {
		raws = append(raws, pk.layerKeys[i].raw)
	}
	for i := range mk.layerKeys {
		raws = append(raws, mk.layerKeys[i].raw)
	}
	pk.Wipe()
	mk.Wipe()
	for _, raw := range raws {
		for i, b := range raw {
			if b != 0 {
				t.Fatalf("byte %d not zeroed after wipe", i)
			}
		}
	}
}
