package heap

import (
	"hash/fnv"

	"github.com/xyproto/evalrus/internal/rerr"
)

const dictLoadFactor = 0.75

// dictItem mirrors dict.rs's DictItem{key, value, hash}; a nil key marks
// an empty slot (dict.rs's "blank sentinel via key.is_nil()").
type dictItem struct {
	key   TaggedPtr
	value TaggedPtr
	hash  uint64
}

func (d dictItem) isEmpty() bool { return d.key.IsNil() }

// Dict is the open-addressed, linear-probed table of spec.md's data
// model, grounded on original_source/src/dict.rs. Keys must be Symbols;
// anything else is an UnhashableError, matching hashable.rs's contract.
// Unlike the original, Dict here resizes once the load factor crosses
// 0.75 (dict.rs defines LOAD_FACTOR but never acts on it — a bug fixed
// per spec.md's design note (c) to satisfy the container invariants).
type Dict struct {
	items []dictItem
	count int
}

func (*Dict) isValue() {}

func NewDict(scope *Scope) *Dict {
	return &Dict{items: make([]dictItem, defaultArraySize)}
}

// NewDictTagged allocates a heap-resident Dict and returns its TaggedPtr.
func NewDictTagged(scope *Scope) TaggedPtr {
	d := NewDict(scope)
	return scope.mem.heap.allocObject(scope, TypeDict, d, 0)
}

func hashSymbolName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

func symbolHash(heap *Heap, key TaggedPtr) (uint64, error) {
	if key.Tag() != TagSymbol || key.IsNil() {
		return 0, rerr.Unhashable("dict keys must be symbols")
	}
	sym := heap.symbolAt(key.index())
	return hashSymbolName(sym.Name), nil
}

// findEntry linear-probes for key starting at hash % capacity, per
// dict.rs's find_entry; it returns the index of either the matching
// occupied slot or the first empty slot suitable for insertion, along
// with whether the key was actually found there.
func (d *Dict) findEntry(heap *Heap, key TaggedPtr, hash uint64) (int, bool) {
	capacity := len(d.items)
	idx := int(hash % uint64(capacity))
	for i := 0; i < capacity; i++ {
		probe := (idx + i) % capacity
		item := d.items[probe]
		if item.isEmpty() {
			return probe, false
		}
		if item.hash == hash && sameSymbol(heap, item.key, key) {
			return probe, true
		}
	}
	return -1, false
}

func sameSymbol(heap *Heap, a, b TaggedPtr) bool {
	return a == b
}

func (d *Dict) maybeResize(scope *Scope) error {
	if float64(d.count+1) <= float64(len(d.items))*dictLoadFactor {
		return nil
	}
	heap := scope.Heap()
	old := d.items
	d.items = make([]dictItem, len(old)*2)
	d.count = 0
	for _, item := range old {
		if item.isEmpty() {
			continue
		}
		idx, found := d.findEntry(heap, item.key, item.hash)
		if found {
			return rerr.Eval("dict: resize found duplicate key")
		}
		d.items[idx] = item
		d.count++
	}
	return nil
}

// Insert binds key to value, growing the table first if the load
// factor would be exceeded.
func (d *Dict) Insert(scope *Scope, key, value TaggedPtr) error {
	scope.check()
	heap := scope.Heap()
	hash, err := symbolHash(heap, key)
	if err != nil {
		return err
	}
	if err := d.maybeResize(scope); err != nil {
		return err
	}
	idx, found := d.findEntry(heap, key, hash)
	d.items[idx] = dictItem{key: key, value: value, hash: hash}
	if !found {
		d.count++
	}
	return nil
}

// Lookup returns the value bound to key, if any.
func (d *Dict) Lookup(scope *Scope, key TaggedPtr) (TaggedPtr, bool, error) {
	scope.check()
	heap := scope.Heap()
	hash, err := symbolHash(heap, key)
	if err != nil {
		return Nil, false, err
	}
	if len(d.items) == 0 {
		return Nil, false, nil
	}
	idx, found := d.findEntry(heap, key, hash)
	if !found {
		return Nil, false, nil
	}
	return d.items[idx].value, true, nil
}

// Exists reports whether key is bound. original_source/src/dict.rs's
// exists() always returns true regardless of whether find_entry
// actually landed on the key (a bug, per spec.md's design note (b));
// here it's fixed to check the slot it lands on is non-empty and
// actually matches.
func (d *Dict) Exists(scope *Scope, key TaggedPtr) (bool, error) {
	_, ok, err := d.Lookup(scope, key)
	return ok, err
}

// Dissoc removes key's binding, if present, using backward-shift
// deletion: each following entry in the same probe chain is shifted
// back into the gap, so clearing the slot never breaks a later lookup's
// probe sequence (the standard fix for deletion under linear probing;
// a naive tombstone-free clear, as a literal port of dict.rs would be,
// can strand entries that probed past the deleted slot).
func (d *Dict) Dissoc(scope *Scope, key TaggedPtr) error {
	scope.check()
	heap := scope.Heap()
	hash, err := symbolHash(heap, key)
	if err != nil {
		return err
	}
	idx, found := d.findEntry(heap, key, hash)
	if !found {
		return rerr.KeyErr("key not found in dict")
	}
	capacity := len(d.items)
	d.items[idx] = dictItem{}
	d.count--
	gap := idx
	probe := (idx + 1) % capacity
	for !d.items[probe].isEmpty() {
		home := int(d.items[probe].hash % uint64(capacity))
		if inProbeRange(home, gap, probe, capacity) {
			d.items[gap] = d.items[probe]
			d.items[probe] = dictItem{}
			gap = probe
		}
		probe = (probe + 1) % capacity
	}
	return nil
}

// inProbeRange reports whether gap lies on entry's probe path from home
// up to (but not including) probe, i.e. whether a future lookup for
// entry would stop at the gap, so entry must be moved into it.
func inProbeRange(home, gap, probe, capacity int) bool {
	if home <= probe {
		return home <= gap && gap <= probe
	}
	return gap >= home || gap <= probe
}

func (d *Dict) Len() int { return d.count }
