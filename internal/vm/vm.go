// Package vm implements the register bytecode interpreter, grounded on
// original_source/src/vm.rs's eval_next_instr/vm_eval_stream/
// quick_vm_eval, with the opcode dispatch loop's shape borrowed from
// j5.nz/rtg's std/compiler/backend_vm.go execFunc.
package vm

import (
	"github.com/xyproto/evalrus/internal/bytecode"
	"github.com/xyproto/evalrus/internal/heap"
	"github.com/xyproto/evalrus/internal/rerr"
)

// StatusKind is the Go analogue of vm.rs's EvalStatus enum.
type StatusKind int

const (
	Pending StatusKind = iota
	Return
	Halt
)

type Status struct {
	Kind  StatusKind
	Value heap.TaggedPtr
}

const defaultRegisterStackSize = 1 << 16

type callFrame struct {
	resultReg    uint8
	callerStream *bytecode.InstructionStream
	callerBase   int
}

// VM is the register machine: one growable register stack shared across
// all active call frames (see DESIGN.md OQ-3), plus the Memory it reads
// globals from and allocates pairs/literals through during execution.
type VM struct {
	mem       *heap.Memory
	registers []heap.TaggedPtr
	frames    []callFrame
	stream    *bytecode.InstructionStream
	base      int
}

func New(mem *heap.Memory) *VM {
	return &VM{
		mem:       mem,
		registers: make([]heap.TaggedPtr, defaultRegisterStackSize),
	}
}

func (v *VM) reg(r uint8) heap.TaggedPtr {
	return v.registers[v.base+int(r)]
}

func (v *VM) setReg(r uint8, val heap.TaggedPtr) {
	v.registers[v.base+int(r)] = val
}

// evalNextInstr executes a single instruction of the current top frame,
// mirroring vm.rs's eval_next_instr.
func (v *VM) evalNextInstr(scope *heap.Scope) (Status, error) {
	op, ok := v.stream.GetNextOpcode()
	if !ok {
		return Status{}, rerr.Eval("instruction stream exhausted without RETURN or HALT")
	}
	h := scope.Heap()

	switch op {
	case bytecode.HALT:
		return Status{Kind: Halt}, nil

	case bytecode.RETURN:
		val := v.reg(v.stream.RegAcc())
		return v.doReturn(val)

	case bytecode.LOADLIT:
		lit, err := v.stream.Code().Literal(v.stream.LitID())
		if err != nil {
			return Status{}, err
		}
		v.setReg(v.stream.RegAcc(), lit)
		return Status{Kind: Pending}, nil

	case bytecode.NIL:
		arg := v.reg(v.stream.Reg1())
		v.setReg(v.stream.RegAcc(), boolToTagged(scope, arg.IsNil()))
		return Status{Kind: Pending}, nil

	case bytecode.ATOM:
		arg := v.reg(v.stream.Reg1())
		v.setReg(v.stream.RegAcc(), boolToTagged(scope, isAtom(arg)))
		return Status{Kind: Pending}, nil

	case bytecode.CAR:
		arg := v.reg(v.stream.Reg1())
		if arg.Tag() != heap.TagPair || arg.IsNil() {
			return Status{}, rerr.Eval("car: argument is not a pair")
		}
		pair, _ := h.Deref(arg).(*heap.Pair)
		v.setReg(v.stream.RegAcc(), pair.FirstVal())
		return Status{Kind: Pending}, nil

	case bytecode.CDR:
		arg := v.reg(v.stream.Reg1())
		if arg.Tag() != heap.TagPair || arg.IsNil() {
			return Status{}, rerr.Eval("cdr: argument is not a pair")
		}
		pair, _ := h.Deref(arg).(*heap.Pair)
		v.setReg(v.stream.RegAcc(), pair.SecondVal())
		return Status{Kind: Pending}, nil

	case bytecode.CONS:
		first := v.reg(v.stream.Reg1())
		second := v.reg(v.stream.Reg2())
		v.setReg(v.stream.RegAcc(), scope.AllocPair(first, second))
		return Status{Kind: Pending}, nil

	case bytecode.EQ:
		a := v.reg(v.stream.Reg1())
		b := v.reg(v.stream.Reg2())
		v.setReg(v.stream.RegAcc(), boolToTagged(scope, a == b))
		return Status{Kind: Pending}, nil

	case bytecode.JMP:
		v.stream.Jump(int16(v.stream.LitID()))
		return Status{Kind: Pending}, nil

	case bytecode.JMPT:
		cond := v.reg(v.stream.RegAcc())
		if isTruthy(scope, cond) {
			v.stream.Jump(int16(v.stream.LitID()))
		}
		return Status{Kind: Pending}, nil

	case bytecode.JMPNT:
		cond := v.reg(v.stream.RegAcc())
		if !isTruthy(scope, cond) {
			v.stream.Jump(int16(v.stream.LitID()))
		}
		return Status{Kind: Pending}, nil

	case bytecode.LOADNIL:
		v.setReg(v.stream.RegAcc(), heap.Nil)
		return Status{Kind: Pending}, nil

	case bytecode.LOADGLOBAL:
		lit, err := v.stream.Code().Literal(v.stream.LitID())
		if err != nil {
			return Status{}, err
		}
		name, ok := symbolName(h, lit)
		if !ok {
			return Status{}, rerr.Eval("loadglobal: literal is not a symbol")
		}
		val, found, err := v.mem.GetGlobal(scope, name)
		if err != nil {
			return Status{}, err
		}
		if !found {
			return Status{}, rerr.Eval("unbound global %q", name)
		}
		v.setReg(v.stream.RegAcc(), val)
		return Status{Kind: Pending}, nil

	case bytecode.STOREGLOBAL:
		nameVal := v.reg(v.stream.RegAcc())
		value := v.reg(v.stream.Reg1())
		name, ok := symbolName(h, nameVal)
		if !ok {
			return Status{}, rerr.Eval("storeglobal: target is not a symbol")
		}
		if err := v.mem.SetGlobal(scope, name, value); err != nil {
			return Status{}, err
		}
		return Status{Kind: Pending}, nil

	case bytecode.MOVE:
		v.setReg(v.stream.RegAcc(), v.reg(v.stream.Reg1()))
		return Status{Kind: Pending}, nil

	case bytecode.CALL:
		return v.doCall(scope, v.stream.RegAcc(), v.stream.Reg1(), v.stream.Reg2())

	default:
		return Status{}, rerr.Eval("unknown opcode 0x%02x", uint8(op))
	}
}

func symbolName(h *heap.Heap, t heap.TaggedPtr) (string, bool) {
	v := h.Deref(t)
	sym, ok := v.(*heap.Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// isAtom reports whether arg is a non-pair; nil is specifically NOT an
// atom, per spec.md's design note (a).
func isAtom(arg heap.TaggedPtr) bool {
	if arg.IsNil() {
		return false
	}
	return arg.Tag() != heap.TagPair
}

// boolToTagged produces the canonical boolean representation: the
// interned true symbol, or nil, per spec.md §4.7.
func boolToTagged(scope *heap.Scope, b bool) heap.TaggedPtr {
	if b {
		return scope.Intern("true")
	}
	return heap.Nil
}

// isTruthy reports whether v is the interned true symbol; everything
// else, including nil and small integers such as 0, is falsy for
// JMPT/JMPNT purposes.
func isTruthy(scope *heap.Scope, v heap.TaggedPtr) bool {
	return v == scope.Intern("true")
}

func (v *VM) doReturn(val heap.TaggedPtr) (Status, error) {
	if len(v.frames) == 0 {
		return Status{Kind: Return, Value: val}, nil
	}
	frame := v.frames[len(v.frames)-1]
	v.frames = v.frames[:len(v.frames)-1]
	v.base = frame.callerBase
	v.stream = frame.callerStream
	v.setReg(frame.resultReg, val)
	return Status{Kind: Pending}, nil
}

// doCall implements spec.md/§9's CALL: the callee value sits in
// calleeReg, its argc arguments occupy calleeReg+1..calleeReg+argc in
// the caller's frame, and those become the callee's parameter registers
// 0..argc-1 directly (DESIGN.md OQ-3).
func (v *VM) doCall(scope *heap.Scope, dest, calleeReg, argc uint8) (Status, error) {
	calleeVal := v.reg(calleeReg)
	fn, ok := bytecode.FunctionFromTagged(scope.Heap(), calleeVal)
	if !ok {
		return Status{}, rerr.Eval("call: target is not a function")
	}
	if fn.Arity != argc {
		return Status{}, rerr.Eval("call: function %s expects %d arguments, got %d", fn.NameString(scope.Heap()), fn.Arity, argc)
	}
	newBase := v.base + int(calleeReg) + 1
	if newBase+256 > len(v.registers) {
		grown := make([]heap.TaggedPtr, len(v.registers)*2)
		copy(grown, v.registers)
		v.registers = grown
	}
	v.frames = append(v.frames, callFrame{
		resultReg:    dest,
		callerStream: v.stream,
		callerBase:   v.base,
	})
	v.base = newBase
	v.stream = bytecode.NewBareInstructionStream(fn.Code)
	return Status{Kind: Pending}, nil
}

// RunSlice executes up to maxInstr instructions of the current top
// frame, stopping early on Return/Halt, mirroring vm.rs's
// vm_eval_stream.
func (v *VM) RunSlice(scope *heap.Scope, maxInstr int) (Status, error) {
	for i := 0; i < maxInstr; i++ {
		status, err := v.evalNextInstr(scope)
		if err != nil {
			return Status{}, err
		}
		if status.Kind != Pending {
			return status, nil
		}
	}
	return Status{Kind: Pending}, nil
}

const quickEvalSliceSize = 1024

// QuickEval runs fn to completion (its RETURN bubbling out of every
// CALL frame it made), slicing execution in quickEvalSliceSize chunks,
// per vm.rs's quick_vm_eval. A HALT, whether at the top level or inside
// a called function, ends the evaluation with an error.
func (v *VM) QuickEval(scope *heap.Scope, fn *bytecode.Function) (heap.TaggedPtr, error) {
	v.frames = nil
	v.base = 0
	v.stream, _ = bytecode.NewInstructionStream(scope, fn.Code)

	for {
		status, err := v.RunSlice(scope, quickEvalSliceSize)
		if err != nil {
			return heap.Nil, err
		}
		switch status.Kind {
		case Return:
			return status.Value, nil
		case Halt:
			return heap.Nil, rerr.Eval("Program halted")
		}
	}
}
