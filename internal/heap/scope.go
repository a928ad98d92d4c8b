package heap

import "github.com/xyproto/evalrus/internal/rerr"

// CellPtr is a mutable slot holding a raw TaggedPtr. It mirrors
// safeptr.rs's CellPtr<T>: nothing may read or write it without an open
// Scope in hand, which is the runtime-checked half of the scoped-pointer
// discipline spec.md's §9 asks for (DESIGN.md OQ-2).
type CellPtr struct {
	v TaggedPtr
}

// Get inflates the cell's contents into a ScopedPtr, bound to scope.
func (c *CellPtr) Get(scope *Scope) ScopedPtr {
	scope.check()
	return ScopedPtr{ptr: c.v, scope: scope}
}

// Raw returns the bare TaggedPtr without scope-checked inflation, for
// code (equality checks, hashing) that only needs the bit pattern.
func (c *CellPtr) Raw() TaggedPtr { return c.v }

// Set stores a new tagged pointer into the cell.
func (c *CellPtr) Set(scope *Scope, t TaggedPtr) {
	scope.check()
	c.v = t
}

// ScopedPtr is a TaggedPtr inflated under a specific Scope. It must not
// be retained past that Scope's Mutate call returning; Deref re-checks
// the scope's generation on every access to catch that at runtime.
type ScopedPtr struct {
	ptr   TaggedPtr
	scope *Scope
}

func (s ScopedPtr) Raw() TaggedPtr { return s.ptr }

func (s ScopedPtr) Deref() Value {
	s.scope.check()
	return s.scope.mem.heap.Deref(s.ptr)
}

func (s ScopedPtr) IsNil() bool { return s.ptr.IsNil() }

// Scope is the runtime stand-in for a borrow-checked lifetime: it is
// created fresh for each Memory.Mutate call and invalidated the moment
// that Mutate call returns, per DESIGN.md OQ-2.
type Scope struct {
	mem *Memory
	gen uint64
}

// check panics if this Scope has outlived its Mutate call — the
// debug-only enforcement spec.md §9 calls for in a language without
// lifetimes.
func (s *Scope) check() {
	if s == nil {
		panic("heap: nil scope used to access heap-managed memory")
	}
	if s.gen != s.mem.heap.gen {
		panic("heap: stale mutator scope used after its Mutate call returned")
	}
}

func (s *Scope) Heap() *Heap { return s.mem.heap }

// Intern interns a symbol through this scope's Heap.
func (s *Scope) Intern(name string) TaggedPtr {
	return s.mem.heap.Intern(s, name)
}

// AllocPair allocates a new cons cell through this scope's Heap.
func (s *Scope) AllocPair(first, second TaggedPtr) TaggedPtr {
	return s.mem.heap.AllocPair(s, first, second)
}

// Memory is the top-level runtime object: the Heap (which carries the
// generation counter that backs scope enforcement) plus the global
// binding table (set/def's target). It is the Go analogue of safeptr.rs's
// MutatorScopeGuard owner and environment.rs's global bindings.
type Memory struct {
	heap    *Heap
	globals *Dict
	open    bool
}

// NewMemory builds a Memory with a fresh Heap (blockSize 0 selects the
// default) and an empty global binding table.
func NewMemory(blockSize int) *Memory {
	m := &Memory{heap: NewHeap(blockSize)}
	m.Mutate(func(scope *Scope) error {
		m.globals = NewDict(scope)
		return nil
	})
	return m
}

func (m *Memory) Close() error { return m.heap.Close() }

func (m *Memory) Heap() *Heap { return m.heap }

// Mutate opens exactly one fresh Scope, runs fn with it, and closes it
// again. Nested Mutate calls are not supported (matching spec.md's
// note that the specified core has no nested-scope story); calling
// Mutate while another is already running returns an error rather than
// silently reentering.
func (m *Memory) Mutate(fn func(scope *Scope) error) error {
	if m.open {
		return rerr.Eval("heap: Mutate called while another Mutate is already open")
	}
	m.open = true
	m.heap.gen++
	scope := &Scope{mem: m, gen: m.heap.gen}
	defer func() {
		m.open = false
		m.heap.gen++
	}()
	return fn(scope)
}

// SetGlobal binds name to value in the global table (set/def's target).
func (m *Memory) SetGlobal(scope *Scope, name string, value TaggedPtr) error {
	sym := scope.Intern(name)
	return m.globals.Insert(scope, sym, value)
}

// GetGlobal looks up name in the global table.
func (m *Memory) GetGlobal(scope *Scope, name string) (TaggedPtr, bool, error) {
	sym := scope.Intern(name)
	return m.globals.Lookup(scope, sym)
}

// Globals exposes the raw global Dict, e.g. for the REPL's introspection.
func (m *Memory) Globals() *Dict { return m.globals }
