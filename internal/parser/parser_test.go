package parser

import (
	"testing"

	"github.com/xyproto/evalrus/internal/heap"
	"github.com/xyproto/evalrus/internal/lexer"
	"github.com/xyproto/evalrus/internal/printer"
)

func TestParseProperList(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("(1 2 3)").Tokenize()
		if err != nil {
			return err
		}
		form, err := New(scope, toks).ParseOne()
		if err != nil {
			return err
		}
		if got, want := printer.Print(scope.Heap(), form), "(1 2 3)"; got != want {
			t.Errorf("Print = %q, want %q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestParseDottedPair(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("(a . b)").Tokenize()
		if err != nil {
			return err
		}
		form, err := New(scope, toks).ParseOne()
		if err != nil {
			return err
		}
		if got, want := printer.Debug(scope.Heap(), form), "(a . b)"; got != want {
			t.Errorf("Debug = %q, want %q", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestParseInteger(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("42").Tokenize()
		if err != nil {
			return err
		}
		form, err := New(scope, toks).ParseOne()
		if err != nil {
			return err
		}
		if form.Tag() != heap.TagSmallInt || form.SmallInt() != 42 {
			t.Errorf("ParseOne(42) = %v, want SmallInt 42", form)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestParseAllMultipleForms(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("1 2 3").Tokenize()
		if err != nil {
			return err
		}
		forms, err := New(scope, toks).ParseAll()
		if err != nil {
			return err
		}
		if len(forms) != 3 {
			t.Fatalf("len(forms) = %d, want 3", len(forms))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestUnmatchedCloseParenErrors(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New(")").Tokenize()
		if err != nil {
			return err
		}
		_, err = New(scope, toks).ParseOne()
		if err == nil {
			t.Error("ParseOne on a lone close paren should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestDotNotFollowedByCloseParenErrors(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("(a . b c)").Tokenize()
		if err != nil {
			return err
		}
		_, err = New(scope, toks).ParseOne()
		if err == nil {
			t.Error("an s-expr after '.' not immediately followed by ')' should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

func TestUnexpectedEndOfStreamErrors(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("(a b").Tokenize()
		if err != nil {
			return err
		}
		_, err = New(scope, toks).ParseOne()
		if err == nil {
			t.Error("an unterminated list should error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}

// TestParseOneOnEmptyStreamYieldsNil confirms top-level end-of-stream is
// not an error: a blank line or trailing EOF parses as nil, distinct
// from end-of-stream inside an open list (see TestUnexpectedEndOfStreamErrors).
func TestParseOneOnEmptyStreamYieldsNil(t *testing.T) {
	mem := heap.NewMemory(0)
	defer mem.Close()

	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New("").Tokenize()
		if err != nil {
			return err
		}
		form, err := New(scope, toks).ParseOne()
		if err != nil {
			t.Errorf("ParseOne on empty stream returned error: %v", err)
		}
		if form != heap.Nil {
			t.Errorf("ParseOne on empty stream = %v, want nil", form)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
}
