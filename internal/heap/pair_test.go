package heap

import "testing"

func TestAllocPairAndDeref(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		p := scope.AllocPair(TaggedSmallInt(1), TaggedSmallInt(2))
		if p.Tag() != TagPair {
			t.Fatalf("AllocPair result tag = %v, want TagPair", p.Tag())
		}
		v := scope.Heap().Deref(p)
		pair, ok := v.(*Pair)
		if !ok {
			t.Fatalf("Deref did not return *Pair, got %T", v)
		}
		if pair.FirstVal().SmallInt() != 1 || pair.SecondVal().SmallInt() != 2 {
			t.Errorf("pair = (%d . %d), want (1 . 2)", pair.FirstVal().SmallInt(), pair.SecondVal().SmallInt())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestListItemsProperList(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		list := Nil
		for i := int64(3); i >= 1; i-- {
			list = Append(scope, TaggedSmallInt(i), list)
		}
		items, err := ListItems(scope.Heap(), list)
		if err != nil {
			return err
		}
		if len(items) != 3 {
			t.Fatalf("len(items) = %d, want 3", len(items))
		}
		for i, want := range []int64{1, 2, 3} {
			if items[i].SmallInt() != want {
				t.Errorf("items[%d] = %d, want %d", i, items[i].SmallInt(), want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestListItemsDottedErrors(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		dotted := scope.AllocPair(TaggedSmallInt(1), TaggedSmallInt(2))
		if _, err := ListItems(scope.Heap(), dotted); err == nil {
			t.Error("ListItems on a dotted pair should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestExactlyOneAndTwo(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		one := Append(scope, TaggedSmallInt(5), Nil)
		v, err := ExactlyOne(scope.Heap(), one)
		if err != nil {
			return err
		}
		if v.SmallInt() != 5 {
			t.Errorf("ExactlyOne = %d, want 5", v.SmallInt())
		}

		if _, err := ExactlyOne(scope.Heap(), Nil); err == nil {
			t.Error("ExactlyOne on empty list should error")
		}

		two := Append(scope, TaggedSmallInt(1), Append(scope, TaggedSmallInt(2), Nil))
		a, b, err := ExactlyTwo(scope.Heap(), two)
		if err != nil {
			return err
		}
		if a.SmallInt() != 1 || b.SmallInt() != 2 {
			t.Errorf("ExactlyTwo = (%d, %d), want (1, 2)", a.SmallInt(), b.SmallInt())
		}

		if _, _, err := ExactlyTwo(scope.Heap(), one); err == nil {
			t.Error("ExactlyTwo on a one-item list should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}
