//go:build !linux && !darwin

package cascade

func lockMemory(b []byte) error   { return nil }
func unlockMemory(b []byte) error { return nil }
