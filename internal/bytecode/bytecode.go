package bytecode

import (
	"github.com/google/uuid"
	"github.com/xyproto/evalrus/internal/container"
	"github.com/xyproto/evalrus/internal/heap"
	"github.com/xyproto/evalrus/internal/rerr"
)

// ByteCode is the heap-resident flat instruction stream plus literal
// pool spec.md's data model describes, grounded on
// original_source/src/bytecode.rs's ByteCode{code, literals}.
//
// BuildID is not part of spec.md's data model: it's a debugging
// nicety (see SPEC_FULL.md's DOMAIN STACK) that stamps every compiled
// ByteCode with a UUID so a REPL's verbose mode, or a Function's debug
// print, can name which compiled blob produced a given trace.
type ByteCode struct {
	code     *container.Array[uint32]
	literals *container.Array[heap.TaggedPtr]
	BuildID  uuid.UUID
}

func NewByteCode(scope *heap.Scope) (*ByteCode, heap.TaggedPtr) {
	bc := &ByteCode{
		code:     container.New[uint32](),
		literals: container.New[heap.TaggedPtr](),
		BuildID:  uuid.New(),
	}
	return bc, scope.Heap().AllocBoxed(scope, heap.TypeByteCode, bc, 0)
}

func FromTagged(h *heap.Heap, t heap.TaggedPtr) (*ByteCode, bool) {
	obj, hdr, ok := h.Unbox(t)
	if !ok || hdr.TypeID != heap.TypeByteCode {
		return nil, false
	}
	bc, ok := obj.(*ByteCode)
	return bc, ok
}

func (b *ByteCode) Len() int { return b.code.Len() }

func (b *ByteCode) Instr(i int) uint32 { return b.code.Get(i) }

func (b *ByteCode) NextInstruction() int { return b.code.Len() }

func (b *ByteCode) Literal(id uint16) (heap.TaggedPtr, error) {
	if int(id) >= b.literals.Len() {
		return heap.Nil, rerr.Bounds("literal id %d out of range (pool size %d)", id, b.literals.Len())
	}
	return b.literals.Get(int(id)), nil
}

// PushLit interns value in the literal pool, returning its id. Matches
// bytecode.rs's push_lit (no dedup: every call appends a fresh slot).
func (b *ByteCode) PushLit(value heap.TaggedPtr) (uint16, error) {
	if b.literals.Len() >= 1<<16 {
		return 0, rerr.Bounds("literal pool exhausted (max 65536 entries)")
	}
	id := uint16(b.literals.Len())
	b.literals.Push(value)
	return id, nil
}

func (b *ByteCode) PushOp0(op Opcode)                          { b.code.Push(Encode0(op)) }
func (b *ByteCode) PushOp1(op Opcode, a uint8)                 { b.code.Push(Encode1(op, a)) }
func (b *ByteCode) PushOp2(op Opcode, a, c uint8)              { b.code.Push(Encode2(op, a, c)) }
func (b *ByteCode) PushOp3(op Opcode, a, c, d uint8)           { b.code.Push(Encode3(op, a, c, d)) }
func (b *ByteCode) PushLoadLit(op Opcode, a uint8, lit uint16) { b.code.Push(EncodeLit(op, a, lit)) }

// Patch overwrites an already-emitted instruction word, used by the
// compiler's cond jump-patching (the offset isn't known until the
// clause's body has been compiled).
func (b *ByteCode) Patch(addr int, word uint32) {
	b.code.Set(addr, word)
}

// InstructionStream walks a ByteCode's instructions, tracking the
// current opcode word so its fields can be decoded one at a time,
// mirroring bytecode.rs's InstructionStream{instructions, ip, current}.
type InstructionStream struct {
	code    *ByteCode
	ip      int
	current uint32
}

func NewInstructionStream(scope *heap.Scope, code *ByteCode) (*InstructionStream, heap.TaggedPtr) {
	is := &InstructionStream{code: code}
	return is, scope.Heap().AllocBoxed(scope, heap.TypeInstructionStream, is, 0)
}

// NewBareInstructionStream builds an InstructionStream with no heap
// presence of its own, used by internal/vm for the per-call-frame
// instruction cursor a nested CALL needs: spec.md's data model only
// requires an InstructionStream to be heap-visible at the top-level
// quick_vm_eval entry point, not for every internal call frame.
func NewBareInstructionStream(code *ByteCode) *InstructionStream {
	return &InstructionStream{code: code}
}

func InstructionStreamFromTagged(h *heap.Heap, t heap.TaggedPtr) (*InstructionStream, bool) {
	obj, hdr, ok := h.Unbox(t)
	if !ok || hdr.TypeID != heap.TypeInstructionStream {
		return nil, false
	}
	is, ok := obj.(*InstructionStream)
	return is, ok
}

// GetNextOpcode advances ip and returns the opcode of the instruction
// just consumed, or false once the stream is exhausted.
func (s *InstructionStream) GetNextOpcode() (Opcode, bool) {
	if s.ip >= s.code.Len() {
		return 0, false
	}
	s.current = s.code.Instr(s.ip)
	s.ip++
	return DecodeOp(s.current), true
}

func (s *InstructionStream) RegAcc() uint8 { return DecodeRegAcc(s.current) }
func (s *InstructionStream) Reg1() uint8   { return DecodeReg1(s.current) }
func (s *InstructionStream) Reg2() uint8   { return DecodeReg2(s.current) }
func (s *InstructionStream) LitID() uint16 { return DecodeLit(s.current) }

// Jump adjusts ip by a relative offset, used by JMP/JMPT/JMPNT. Offsets
// are relative to the instruction *after* the jump, matching the
// compiler's `next_instruction() - address - 1` computation.
func (s *InstructionStream) Jump(offset int16) {
	s.ip += int(offset)
}

func (s *InstructionStream) IP() int { return s.ip }

func (s *InstructionStream) SetIP(ip int) { s.ip = ip }

func (s *InstructionStream) Code() *ByteCode { return s.code }
