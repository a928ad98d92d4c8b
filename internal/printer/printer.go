// Package printer renders heap values to their printed and debug
// forms, grounded on original_source/src/printer.rs.
package printer

import (
	"fmt"
	"strings"

	"github.com/xyproto/evalrus/internal/bytecode"
	"github.com/xyproto/evalrus/internal/heap"
)

// Print renders value in the user-facing printed form: symbols and
// numbers as themselves, pairs as (a b c) or (a . b) for dotted tails,
// nil as "nil".
func Print(h *heap.Heap, t heap.TaggedPtr) string {
	return render(h, t, false)
}

// Debug renders value in the strict dotted-pair debug form, where
// every pair is shown as (first . second) with no list-sugar.
func Debug(h *heap.Heap, t heap.TaggedPtr) string {
	return render(h, t, true)
}

func render(h *heap.Heap, t heap.TaggedPtr, debug bool) string {
	v := h.Deref(t)
	switch val := v.(type) {
	case heap.SmallInt:
		return fmt.Sprintf("%d", int64(val))
	case *heap.Symbol:
		return val.Name
	case *heap.ArrayAny:
		return renderArray(h, val, debug)
	case *heap.Dict:
		return "#[dict]"
	case heap.Boxed:
		return renderBoxed(h, val, debug)
	default:
		if heap.IsNilValue(v) {
			return "nil"
		}
		if pair, ok := v.(*heap.Pair); ok {
			return renderPair(h, pair, debug)
		}
		return "#[unknown]"
	}
}

func renderPair(h *heap.Heap, p *heap.Pair, debug bool) string {
	if debug {
		return "(" + render(h, p.FirstVal(), true) + " . " + render(h, p.SecondVal(), true) + ")"
	}
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(render(h, p.FirstVal(), false))
	rest := p.SecondVal()
	for {
		restVal := h.Deref(rest)
		if heap.IsNilValue(restVal) {
			break
		}
		if nextPair, ok := restVal.(*heap.Pair); ok {
			sb.WriteByte(' ')
			sb.WriteString(render(h, nextPair.FirstVal(), false))
			rest = nextPair.SecondVal()
			continue
		}
		sb.WriteString(" . ")
		sb.WriteString(render(h, rest, false))
		break
	}
	sb.WriteByte(')')
	return sb.String()
}

func renderArray(h *heap.Heap, a *heap.ArrayAny, debug bool) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < a.Length(); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		v, err := a.Get(i)
		if err != nil {
			continue
		}
		sb.WriteString(render(h, v, debug))
	}
	sb.WriteString("]")
	return sb.String()
}

func renderBoxed(h *heap.Heap, b heap.Boxed, debug bool) string {
	switch b.TypeID {
	case heap.TypeFunction:
		if f, ok := b.Any.(*bytecode.Function); ok {
			name := f.NameString(h)
			if name == "" {
				name = "anonymous"
			}
			if debug {
				return fmt.Sprintf("Function(%s, build %s)", name, f.Code.BuildID)
			}
			return fmt.Sprintf("Function(%s)", name)
		}
	case heap.TypeByteCode:
		if bc, ok := b.Any.(*bytecode.ByteCode); ok {
			return fmt.Sprintf("ByteCode(%s, %d instrs)", bc.BuildID, bc.Len())
		}
	case heap.TypeInstructionStream:
		return "InstructionStream"
	}
	return "#[object]"
}
