package cascade

import "runtime"

// Zero overwrites a byte slice in memory with zeros. The KeepAlive call
// stops the compiler from treating the stores as dead when the slice is
// about to go out of scope.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
