package heap

import "github.com/xyproto/evalrus/internal/rerr"

// Pair is a mutable cons cell, grounded on original_source/src/pair.rs.
// It records no source position, and the parser keeps none for pairs
// elsewhere either.
type Pair struct {
	First  CellPtr
	Second CellPtr
}

func (*Pair) isValue() {}

// First/SecondVal return the raw tagged pointers, for code that just
// needs the bits (e.g. the compiler walking an AST) without going
// through the scoped Get/Deref dance twice.
func (p *Pair) FirstVal() TaggedPtr  { return p.First.Raw() }
func (p *Pair) SecondVal() TaggedPtr { return p.Second.Raw() }

// Append builds a new Pair whose First is value and whose Second links
// to the tail, for building lists tail-first, i.e. (cons value tail).
func Append(scope *Scope, value, tail TaggedPtr) TaggedPtr {
	return scope.AllocPair(value, tail)
}

// ListItems walks a proper Pair list (nil-terminated) and returns its
// elements. Returns a BoundsError-flavored EvalError if the list is
// dotted (not nil-terminated), mirroring pair.rs's
// get_one_from_pair_list/get_two_from_pair_list family's
// "Expected a Pair list" message.
func ListItems(h *Heap, head TaggedPtr) ([]TaggedPtr, error) {
	var items []TaggedPtr
	cur := head
	for {
		if cur.IsNil() {
			return items, nil
		}
		if cur.Tag() != TagPair {
			return nil, rerr.Eval("Expected a Pair list")
		}
		p := h.pairAt(cur.index())
		items = append(items, p.FirstVal())
		cur = p.SecondVal()
	}
}

// ExactlyOne returns the single element of a one-item Pair list, per
// pair.rs's get_one_from_pair_list.
func ExactlyOne(h *Heap, head TaggedPtr) (TaggedPtr, error) {
	items, err := ListItems(h, head)
	if err != nil {
		return Nil, err
	}
	if len(items) != 1 {
		return Nil, rerr.Eval("Expected no more than one value in Pair list")
	}
	return items[0], nil
}

// ExactlyTwo returns the two elements of a two-item Pair list, per
// pair.rs's get_two_from_pair_list.
func ExactlyTwo(h *Heap, head TaggedPtr) (TaggedPtr, TaggedPtr, error) {
	items, err := ListItems(h, head)
	if err != nil {
		return Nil, Nil, err
	}
	if len(items) < 2 {
		return Nil, Nil, rerr.Eval("Expected no less than two values in Pair list")
	}
	if len(items) > 2 {
		return Nil, Nil, rerr.Eval("Expected no more than two values in Pair list")
	}
	return items[0], items[1], nil
}
