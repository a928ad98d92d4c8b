package bytecode

import "github.com/xyproto/evalrus/internal/heap"

// Function pairs a name, fixed arity, and compiled ByteCode body,
// grounded on original_source/src/function.rs's Function{name, arity,
// code}.
type Function struct {
	Name  heap.TaggedPtr // Symbol, or nil for anonymous
	Arity uint8
	Code  *ByteCode
}

func NewFunction(scope *heap.Scope, name heap.TaggedPtr, arity uint8, code *ByteCode) (*Function, heap.TaggedPtr) {
	f := &Function{Name: name, Arity: arity, Code: code}
	return f, scope.Heap().AllocBoxed(scope, heap.TypeFunction, f, 0)
}

func FunctionFromTagged(h *heap.Heap, t heap.TaggedPtr) (*Function, bool) {
	obj, hdr, ok := h.Unbox(t)
	if !ok || hdr.TypeID != heap.TypeFunction {
		return nil, false
	}
	f, ok := obj.(*Function)
	return f, ok
}

// NameString returns the function's name for printing, or "" for an
// anonymous function.
func (f *Function) NameString(h *heap.Heap) string {
	if f.Name.IsNil() {
		return ""
	}
	v := h.Deref(f.Name)
	if sym, ok := v.(*heap.Symbol); ok {
		return sym.Name
	}
	return ""
}
