package cascade

// layerKey is the per-layer secret for one cascade position. It lives only
// in memory, owned by the PasswordKey or MasterKey that derived it, and is
// pinned against swapping where the platform allows it.
type layerKey struct {
	algorithm Algorithm
	raw       []byte
}

func newLayerKey(alg Algorithm, raw []byte) layerKey {
	_ = lockMemory(raw)
	return layerKey{algorithm: alg, raw: raw}
}

func (k *layerKey) wipe() {
	Zero(k.raw)
	_ = unlockMemory(k.raw)
	k.raw = nil
}

func wipeLayerKeys(keys []layerKey) {
	for i := range keys {
		keys[i].wipe()
	}
}

// PasswordKey is the session-only result of stretching a password. Salt
// and Cost must be persisted to rederive the same key in a later session;
// the layer keys themselves are never stored.
type PasswordKey struct {
	Salt []byte
	Cost CostParams

	layerKeys []layerKey
}

// Wipe zeroes all layer keys. The PasswordKey is unusable afterwards.
func (pk *PasswordKey) Wipe() {
	wipeLayerKeys(pk.layerKeys)
}

// MasterKey holds the layer keys derived from the 32-byte master material.
// The raw material itself is wiped before the operation that produced the
// MasterKey returns and is recoverable only by opening the encrypted master
// key blob again.
type MasterKey struct {
	layerKeys []layerKey
}

// Wipe zeroes all layer keys. The MasterKey is unusable afterwards.
func (mk *MasterKey) Wipe() {
	wipeLayerKeys(mk.layerKeys)
}

// EncryptedData is one encrypted item: a fresh content key wrapped by the
// master cascade, and the payload sealed by the content cascade. Both
// blobs are caller-owned and safe to persist.
type EncryptedData struct {
	WrappedContentKey []byte
	Ciphertext        []byte
}
