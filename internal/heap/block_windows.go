//go:build windows

package heap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapBlock reserves and commits n bytes via VirtualAlloc, mirroring
// SnellerInc-sneller's vm/malloc_windows.go.
func mapBlock(n int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	var b []byte
	sh := (*struct {
		Data uintptr
		Len  int
		Cap  int
	})(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = n
	sh.Cap = n
	return b, nil
}

func unmapBlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return windows.VirtualFree(uintptr(unsafe.Pointer(&b[0])), 0, windows.MEM_RELEASE)
}
