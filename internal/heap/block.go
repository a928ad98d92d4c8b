package heap

import "github.com/xyproto/evalrus/internal/rerr"

// DefaultBlockSize is the size of each arena block, matching
// original_source/src/arena.rs's BLOCK_SIZE.
const DefaultBlockSize = 4096

// block is a single bump-allocated arena region, backed by an
// OS-mapped byte slice (see block_unix.go/block_windows.go) rather than
// a plain make([]byte, …), grounded on SnellerInc-sneller's vm/malloc_*.go
// split.
type block struct {
	buf    []byte
	offset int
}

func newBlock(size int) (*block, error) {
	buf, err := mapBlock(size)
	if err != nil {
		return nil, rerr.Oom("failed to map %d byte block: %v", size, err)
	}
	return &block{buf: buf}, nil
}

// alloc bump-allocates n bytes 8-byte aligned from the block, returning
// nil if the block has insufficient remaining space — callers retire the
// block and allocate a fresh one, per original_source/src/arena.rs's
// inner_alloc contract.
func (b *block) alloc(n int) []byte {
	aligned := (b.offset + 7) &^ 7
	if aligned+n > len(b.buf) {
		return nil
	}
	b.offset = aligned + n
	return b.buf[aligned : aligned+n : aligned+n]
}

func (b *block) remaining() int {
	aligned := (b.offset + 7) &^ 7
	return len(b.buf) - aligned
}

// Arena is the §4.1 block allocator: a growing sequence of fixed-size
// blocks, bump-allocating within the current block and retiring it for a
// fresh one (sized to fit, if the request is larger than the default)
// when it overflows. It never frees a block before the Arena itself is
// dropped — the heap is monotonically growing, matching spec's Lifecycle
// note.
type Arena struct {
	blockSize int
	blocks    []*block
	current   *block
	allocated int
}

// NewArena builds an Arena whose blocks default to DefaultBlockSize,
// growing to fit any single allocation larger than that.
func NewArena(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{blockSize: blockSize}
}

// AllocBytes returns a freshly bump-allocated, zeroed byte range of
// length n. The returned slice is only valid for as long as the Arena
// itself is alive; it is never moved or reused.
func (a *Arena) AllocBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, rerr.Bounds("negative allocation size %d", n)
	}
	if a.current != nil {
		if buf := a.current.alloc(n); buf != nil {
			return buf, nil
		}
	}
	size := a.blockSize
	if n > size {
		size = n
	}
	b, err := newBlock(size)
	if err != nil {
		return nil, err
	}
	a.blocks = append(a.blocks, b)
	a.current = b
	a.allocated += size
	buf := b.alloc(n)
	if buf == nil {
		return nil, rerr.Oom("block of size %d could not satisfy %d byte allocation", size, n)
	}
	return buf, nil
}

// Allocated reports the total number of bytes reserved across all
// blocks, live or retired.
func (a *Arena) Allocated() int {
	return a.allocated
}

// Close releases every mapped block. Not part of the original spec
// (the heap never frees while running) but needed so tests and
// short-lived CLI invocations don't leak mmap'd memory.
func (a *Arena) Close() error {
	var firstErr error
	for _, b := range a.blocks {
		if err := unmapBlock(b.buf); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.blocks = nil
	a.current = nil
	return firstErr
}
