//go:build !windows

package heap

import "syscall"

// mapBlock reserves and commits n bytes of anonymous, read-write memory,
// the same syscall.Mmap call SnellerInc-sneller's vm/malloc_linux.go uses
// for its VMM region, scaled down to a single fixed-size block.
func mapBlock(n int) ([]byte, error) {
	return syscall.Mmap(-1, 0, n, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_ANON|syscall.MAP_PRIVATE)
}

func unmapBlock(b []byte) error {
	return syscall.Munmap(b)
}
