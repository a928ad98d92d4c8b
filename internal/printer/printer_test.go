package printer

import (
	"testing"

	"github.com/xyproto/evalrus/internal/heap"
)

func TestPrintSmallIntAndSymbol(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		if got := Print(scope.Heap(), heap.TaggedSmallInt(42)); got != "42" {
			t.Errorf("Print(42) = %q, want 42", got)
		}
		sym := scope.Intern("foo")
		if got := Print(scope.Heap(), sym); got != "foo" {
			t.Errorf("Print(foo) = %q, want foo", got)
		}
		if got := Print(scope.Heap(), heap.Nil); got != "nil" {
			t.Errorf("Print(nil) = %q, want nil", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestPrintProperListSugar(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		list := heap.Append(scope, heap.TaggedSmallInt(1),
			heap.Append(scope, heap.TaggedSmallInt(2),
				heap.Append(scope, heap.TaggedSmallInt(3), heap.Nil)))
		if got, want := Print(scope.Heap(), list), "(1 2 3)"; got != want {
			t.Errorf("Print(list) = %q, want %q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDebugAlwaysShowsDottedForm(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		list := heap.Append(scope, heap.TaggedSmallInt(1), heap.Append(scope, heap.TaggedSmallInt(2), heap.Nil))
		if got, want := Debug(scope.Heap(), list), "(1 . (2 . nil))"; got != want {
			t.Errorf("Debug(list) = %q, want %q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestPrintDottedTail(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		dotted := scope.AllocPair(heap.TaggedSmallInt(1), heap.TaggedSmallInt(2))
		if got, want := Print(scope.Heap(), dotted), "(1 . 2)"; got != want {
			t.Errorf("Print(dotted) = %q, want %q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestPrintArray(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		ptr := heap.NewArrayAny(scope)
		arr := scope.Heap().Deref(ptr).(*heap.ArrayAny)
		arr.Push(scope, heap.TaggedSmallInt(1))
		arr.Push(scope, heap.TaggedSmallInt(2))
		if got, want := Print(scope.Heap(), ptr), "[1 2]"; got != want {
			t.Errorf("Print(array) = %q, want %q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}
