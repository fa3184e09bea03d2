//go:build unix

package gpu

import "golang.org/x/sys/unix"

// allocHost maps size bytes of anonymous, zero-filled, page-aligned memory.
// The mapping lives outside the Go heap until freeHost unmaps it.
func allocHost(size int64) ([]byte, error) {
	return unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func freeHost(data []byte) error {
	return unix.Munmap(data)
}
