package heap

import "testing"

func TestDictInsertLookup(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		d := NewDict(scope)
		key := scope.Intern("x")
		if err := d.Insert(scope, key, TaggedSmallInt(1)); err != nil {
			return err
		}
		val, found, err := d.Lookup(scope, key)
		if err != nil {
			return err
		}
		if !found || val.SmallInt() != 1 {
			t.Errorf("Lookup(x) = (%d, %v), want (1, true)", val.SmallInt(), found)
		}

		other := scope.Intern("y")
		_, found, err = d.Lookup(scope, other)
		if err != nil {
			return err
		}
		if found {
			t.Error("Lookup(y) found = true, want false")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDictInsertOverwrite(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		d := NewDict(scope)
		key := scope.Intern("x")
		d.Insert(scope, key, TaggedSmallInt(1))
		d.Insert(scope, key, TaggedSmallInt(2))
		if d.Len() != 1 {
			t.Errorf("Len() after overwrite = %d, want 1", d.Len())
		}
		val, _, _ := d.Lookup(scope, key)
		if val.SmallInt() != 2 {
			t.Errorf("Lookup(x) = %d, want 2", val.SmallInt())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDictResizesAtLoadFactor(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		d := NewDict(scope)
		startCap := len(d.items)
		for i := 0; i < 50; i++ {
			key := scope.Intern(string(rune('a' + i%26)) + string(rune('A'+i/26)))
			if err := d.Insert(scope, key, TaggedSmallInt(int64(i))); err != nil {
				return err
			}
		}
		if len(d.items) <= startCap {
			t.Errorf("dict never resized from its initial capacity of %d", startCap)
		}
		if float64(d.count) > float64(len(d.items))*dictLoadFactor {
			t.Errorf("dict exceeded its load factor: count=%d capacity=%d", d.count, len(d.items))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDictExistsIsAccurate(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		d := NewDict(scope)
		present := scope.Intern("present")
		absent := scope.Intern("absent")
		d.Insert(scope, present, TaggedSmallInt(1))

		ok, err := d.Exists(scope, present)
		if err != nil {
			return err
		}
		if !ok {
			t.Error("Exists(present) = false, want true")
		}
		ok, err = d.Exists(scope, absent)
		if err != nil {
			return err
		}
		if ok {
			t.Error("Exists(absent) = true, want false (original always-true bug must stay fixed)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDictUnhashableKeyErrors(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		d := NewDict(scope)
		if err := d.Insert(scope, TaggedSmallInt(5), TaggedSmallInt(1)); err == nil {
			t.Error("Insert with a non-symbol key should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDictDissocBackwardShift(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *Scope) error {
		d := NewDict(scope)
		var keys []TaggedPtr
		names := []string{"k0", "k1", "k2", "k3", "k4", "k5"}
		for _, n := range names {
			k := scope.Intern(n)
			keys = append(keys, k)
			if err := d.Insert(scope, k, TaggedSmallInt(int64(len(keys)))); err != nil {
				return err
			}
		}

		if err := d.Dissoc(scope, keys[1]); err != nil {
			return err
		}
		if err := d.Dissoc(scope, keys[2]); err != nil {
			return err
		}

		for i, k := range keys {
			if i == 1 || i == 2 {
				if ok, _ := d.Exists(scope, k); ok {
					t.Errorf("key %d should have been removed", i)
				}
				continue
			}
			val, found, err := d.Lookup(scope, k)
			if err != nil {
				return err
			}
			if !found {
				t.Errorf("key %d (%s) should still be found after deleting others in its probe chain", i, names[i])
			}
			if val.SmallInt() != int64(i+1) {
				t.Errorf("key %d value = %d, want %d", i, val.SmallInt(), i+1)
			}
		}

		if err := d.Dissoc(scope, keys[1]); err == nil {
			t.Error("Dissoc on an already-removed key should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}
