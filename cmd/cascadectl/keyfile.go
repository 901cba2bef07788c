package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xyfir/cascade"
)

// keyfile is everything a later session needs to reopen data: the layer
// list, the password-hash parameters with their salt, and the wrapped
// master key. None of it is secret.
type keyfile struct {
	Version    int      `json:"version"`
	Layers     []string `json:"layers"`
	Hash       string   `json:"hash"`
	Salt       []byte   `json:"salt"`
	Time       uint32   `json:"t,omitempty"`
	MemoryKiB  uint32   `json:"m,omitempty"`
	Threads    uint8    `json:"p,omitempty"`
	Iterations uint32   `json:"iter,omitempty"`
	MasterWrap []byte   `json:"master_wrap"`
}

// itemFile is one sealed payload.
type itemFile struct {
	WrappedKey []byte `json:"wrapped_key"`
	Ciphertext []byte `json:"ciphertext"`
}

func newKeyfile(layers []cascade.Algorithm, pk *cascade.PasswordKey, masterWrap []byte) *keyfile {
	names := make([]string, len(layers))
	for i, alg := range layers {
		names[i] = alg.String()
	}
	return &keyfile{
		Version:    1,
		Layers:     names,
		Hash:       pk.Cost.Hash.String(),
		Salt:       pk.Salt,
		Time:       pk.Cost.Time,
		MemoryKiB:  pk.Cost.MemoryKiB,
		Threads:    pk.Cost.Threads,
		Iterations: pk.Cost.Iterations,
		MasterWrap: masterWrap,
	}
}

func (kf *keyfile) config() (cascade.Config, error) {
	layers := make([]cascade.Algorithm, len(kf.Layers))
	for i, name := range kf.Layers {
		alg, err := cascade.ParseAlgorithm(name)
		if err != nil {
			return cascade.Config{}, err
		}
		layers[i] = alg
	}
	return cascade.Config{Layers: layers}, nil
}

func (kf *keyfile) cost() (cascade.CostParams, error) {
	hash, err := cascade.ParsePasswordHash(kf.Hash)
	if err != nil {
		return cascade.CostParams{}, err
	}
	return cascade.CostParams{
		Hash:       hash,
		Time:       kf.Time,
		MemoryKiB:  kf.MemoryKiB,
		Threads:    kf.Threads,
		Iterations: kf.Iterations,
	}, nil
}

func readKeyfile(path string) (*keyfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var kf keyfile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keyfile %s: %w", path, err)
	}
	return &kf, nil
}

func writeKeyfile(path string, kf *keyfile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readItem(path string) (*itemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var it itemFile
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("parse sealed file %s: %w", path, err)
	}
	return &it, nil
}

func writeItem(path string, it *itemFile) error {
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
