//go:build !unix

package gpu

// allocHost falls back to the Go heap. size is already a multiple of 8, so
// the allocator hands back at least 8-byte aligned memory.
func allocHost(size int64) ([]byte, error) {
	return make([]byte, size), nil
}

func freeHost(data []byte) error {
	return nil
}
