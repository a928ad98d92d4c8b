package bytecode

import (
	"testing"

	"github.com/xyproto/evalrus/internal/heap"
)

func TestFunctionNameString(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		bc, _ := NewByteCode(scope)
		name := scope.Intern("square")
		fn, fnPtr := NewFunction(scope, name, 1, bc)
		if fn.NameString(scope.Heap()) != "square" {
			t.Errorf("NameString = %q, want square", fn.NameString(scope.Heap()))
		}

		anon, _ := NewFunction(scope, heap.Nil, 0, bc)
		if anon.NameString(scope.Heap()) != "" {
			t.Errorf("anonymous NameString = %q, want empty", anon.NameString(scope.Heap()))
		}

		got, ok := FunctionFromTagged(scope.Heap(), fnPtr)
		if !ok || got != fn {
			t.Error("FunctionFromTagged did not recover the same Function")
		}
		if fn.Arity != 1 {
			t.Errorf("Arity = %d, want 1", fn.Arity)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}
