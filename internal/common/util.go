package common

// WipeByteArray overwrites the contents of a sensitive byte slice
// (e.g. a password) so it does not linger in memory.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
