package cascade

import "fmt"

const (
	// MinLayers and MaxLayers bound the cascade length. The upper bound
	// caps worst-case work on hostile configuration.
	MinLayers = 1
	MaxLayers = 10

	// rootKeySize is the length of all root key material: password-hash
	// output, random master material, and random content material.
	rootKeySize = 32
)

// Config selects the ordered AEAD layers of the cascade. Layer 0 is
// applied first on seal and therefore opened last.
type Config struct {
	Layers []Algorithm
}

// Cascade is an immutable instance bound to one layer list. It is safe for
// concurrent use: operations never mutate the instance or any key passed
// in.
type Cascade struct {
	layers []Algorithm
}

// New validates the configuration once and returns an instance exposing
// the key-hierarchy operations. Changing the layer list of stored data
// breaks compatibility by design; there is no version byte to migrate.
func New(cfg Config) (*Cascade, error) {
	if len(cfg.Layers) < MinLayers {
		return nil, fmt.Errorf("%w: at least one layer required", ErrInvalidConfig)
	}
	if len(cfg.Layers) > MaxLayers {
		return nil, fmt.Errorf("%w: at most %d layers allowed", ErrInvalidConfig, MaxLayers)
	}
	for _, alg := range cfg.Layers {
		if _, err := suiteOf(alg); err != nil {
			return nil, err
		}
	}
	return &Cascade{layers: append([]Algorithm(nil), cfg.Layers...)}, nil
}

// Layers returns a copy of the configured layer list.
func (c *Cascade) Layers() []Algorithm {
	return append([]Algorithm(nil), c.layers...)
}

// Overhead reports the total ciphertext expansion in bytes: the sum of
// every layer's nonce and tag framing.
func (c *Cascade) Overhead() int {
	total := 0
	for _, alg := range c.layers {
		total += alg.Overhead()
	}
	return total
}

// seal is the left fold of the layer seal functions: layer 0 first, each
// subsequent layer sealing the previous envelope.
func (c *Cascade) seal(keys []layerKey, plaintext []byte) ([]byte, error) {
	if err := c.checkKeys(keys); err != nil {
		return nil, err
	}
	cur := plaintext
	for i, alg := range c.layers {
		s, err := suiteOf(alg)
		if err != nil {
			return nil, err
		}
		next, err := s.seal(keys[i].raw, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// open unwraps layers in reverse order, outermost first, so
// open_0(...(open_{L-1}(seal_{L-1}(...seal_0(p))))) == p. The first failed
// authentication aborts; the error never says which layer it was.
func (c *Cascade) open(keys []layerKey, blob []byte) ([]byte, error) {
	if err := c.checkKeys(keys); err != nil {
		return nil, err
	}
	cur := blob
	for i := len(c.layers) - 1; i >= 0; i-- {
		s, err := suiteOf(c.layers[i])
		if err != nil {
			return nil, err
		}
		pt, err := s.open(keys[i].raw, cur)
		if err != nil {
			return nil, err
		}
		cur = pt
	}
	return cur, nil
}

// checkKeys rejects key sets that were not derived for this instance's
// layer list.
func (c *Cascade) checkKeys(keys []layerKey) error {
	if len(keys) != len(c.layers) {
		return fmt.Errorf("%w: key does not match cascade configuration", ErrInvalidParameter)
	}
	for i := range keys {
		if keys[i].algorithm != c.layers[i] {
			return fmt.Errorf("%w: key does not match cascade configuration", ErrInvalidParameter)
		}
	}
	return nil
}
