// Package compiler lowers Pair-list ASTs into register bytecode,
// grounded on original_source/src/compiler.rs.
package compiler

import (
	"github.com/xyproto/evalrus/internal/bytecode"
	"github.com/xyproto/evalrus/internal/heap"
	"github.com/xyproto/evalrus/internal/rerr"
)

const maxRegisters = 256
const maxArity = 250

// scope tracks a compile-time lexical binding table: parameter name to
// register number, per compiler.rs's Scope{bindings}.
type scope struct {
	bindings map[string]uint8
	parent   *scope
}

func (s *scope) lookup(name string) (uint8, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if r, ok := cur.bindings[name]; ok {
			return r, true
		}
	}
	return 0, false
}

// Compiler walks one function body (top-level code is compiled as an
// implicit zero-arity function) into a single ByteCode object, per
// compiler.rs's Compiler{bytecode, next_reg, name, locals}.
type Compiler struct {
	h       *heap.Heap
	s       *heap.Scope
	code    *bytecode.ByteCode
	nextReg uint8
	name    string
	locals  *scope
}

func newCompiler(s *heap.Scope, name string, locals *scope) (*Compiler, error) {
	code, _ := bytecode.NewByteCode(s)
	return &Compiler{h: s.Heap(), s: s, code: code, name: name, locals: locals}, nil
}

// acquireReg allocates the next free register, erroring past 255
// registers per compiler.rs's overflow check.
func (c *Compiler) acquireReg() (uint8, error) {
	if int(c.nextReg) >= maxRegisters-1 {
		return 0, rerr.Eval("compiler: register allocator exhausted (more than 255 registers needed)")
	}
	r := c.nextReg
	c.nextReg++
	return r, nil
}

// resetReg rewinds the allocator to r, so registers used by an already
// emitted sub-expression (e.g. one cond clause) are free for the next.
func (c *Compiler) resetReg(r uint8) {
	c.nextReg = r
}

// Compile compiles a single top-level form into a zero-argument
// Function value, the unit a quick_vm_eval-style driver executes.
func Compile(s *heap.Scope, expr heap.TaggedPtr) (*bytecode.Function, heap.TaggedPtr, error) {
	c, err := newCompiler(s, "", nil)
	if err != nil {
		return nil, heap.Nil, err
	}
	dest, err := c.acquireReg()
	if err != nil {
		return nil, heap.Nil, err
	}
	if err := c.compileEval(expr, dest); err != nil {
		return nil, heap.Nil, err
	}
	c.code.PushOp1(bytecode.RETURN, dest)
	fn, fnPtr := bytecode.NewFunction(s, heap.Nil, 0, c.code)
	return fn, fnPtr, nil
}

// compileEval compiles expr so that its value ends up in register dest,
// per compiler.rs's compile_eval.
func (c *Compiler) compileEval(expr heap.TaggedPtr, dest uint8) error {
	v := c.h.Deref(expr)
	switch val := v.(type) {
	case *heap.Pair:
		return c.compileApply(val, dest)
	case *heap.Symbol:
		switch val.Name {
		case "nil":
			c.code.PushOp1(bytecode.LOADNIL, dest)
			return nil
		case "true":
			return c.loadLiteral(expr, dest)
		default:
			if r, ok := c.locals.lookup(val.Name); ok {
				if r != dest {
					c.code.PushOp2(bytecode.MOVE, dest, r)
				}
				return nil
			}
			litID, err := c.code.PushLit(expr)
			if err != nil {
				return err
			}
			c.code.PushLoadLit(bytecode.LOADGLOBAL, dest, litID)
			return nil
		}
	default:
		return c.loadLiteral(expr, dest)
	}
}

// loadLiteral pushes value into the literal pool and emits a LOADLIT
// into dest.
func (c *Compiler) loadLiteral(value heap.TaggedPtr, dest uint8) error {
	id, err := c.code.PushLit(value)
	if err != nil {
		return err
	}
	c.code.PushLoadLit(bytecode.LOADLIT, dest, id)
	return nil
}

func symbolName(h *heap.Heap, t heap.TaggedPtr) (string, bool) {
	v := h.Deref(t)
	sym, ok := v.(*heap.Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// compileApply dispatches a Pair expr's operator against the special
// form table, falling back to CALL for anything else, per compiler.rs's
// compile_apply.
func (c *Compiler) compileApply(expr *heap.Pair, dest uint8) error {
	opName, isSym := symbolName(c.h, expr.FirstVal())
	args := expr.SecondVal()

	if isSym {
		switch opName {
		case "quote":
			arg, err := heap.ExactlyOne(c.h, args)
			if err != nil {
				return err
			}
			return c.loadLiteral(arg, dest)
		case "atom?":
			return c.compileUnaryOp(args, dest, bytecode.ATOM)
		case "nil?":
			return c.compileUnaryOp(args, dest, bytecode.NIL)
		case "car":
			return c.compileUnaryOp(args, dest, bytecode.CAR)
		case "cdr":
			return c.compileUnaryOp(args, dest, bytecode.CDR)
		case "cons":
			return c.compileBinaryOp(args, dest, bytecode.CONS)
		case "is?":
			return c.compileBinaryOp(args, dest, bytecode.EQ)
		case "cond":
			return c.compileApplyCond(args, dest)
		case "set":
			return c.compileApplyAssign(args, dest)
		case "def":
			return c.compileNamedFunction(args, dest)
		}
	}
	return c.compileCall(expr.FirstVal(), args, dest)
}

func (c *Compiler) compileUnaryOp(args heap.TaggedPtr, dest uint8, op bytecode.Opcode) error {
	arg, err := heap.ExactlyOne(c.h, args)
	if err != nil {
		return err
	}
	if err := c.compileEval(arg, dest); err != nil {
		return err
	}
	src := dest
	c.code.PushOp2(op, dest, src)
	return nil
}

func (c *Compiler) compileBinaryOp(args heap.TaggedPtr, dest uint8, op bytecode.Opcode) error {
	a, b, err := heap.ExactlyTwo(c.h, args)
	if err != nil {
		return err
	}
	save := c.nextReg
	if err := c.compileEval(a, dest); err != nil {
		return err
	}
	regB, err := c.acquireReg()
	if err != nil {
		return err
	}
	if err := c.compileEval(b, regB); err != nil {
		return err
	}
	c.code.PushOp3(op, dest, dest, regB)
	c.resetReg(save)
	if dest >= c.nextReg {
		c.nextReg = dest + 1
	}
	return nil
}

// compileApplyCond compiles (cond (test1 expr1) (test2 expr2) ...),
// grounded on compiler.rs's compile_apply_cond: each clause emits its
// test, a conditional jump over its body if false, the body itself,
// then an unconditional jump to the end; a shared result register is
// reused across clauses via resetReg. Falling off the end (no clause
// matched) loads nil.
func (c *Compiler) compileApplyCond(args heap.TaggedPtr, dest uint8) error {
	clauses, err := heap.ListItems(c.h, args)
	if err != nil {
		return err
	}
	save := c.nextReg
	var endJumps []int

	for _, clause := range clauses {
		c.resetReg(save)
		test, body, err := heap.ExactlyTwo(c.h, clause)
		if err != nil {
			return err
		}
		if err := c.compileEval(test, dest); err != nil {
			return err
		}
		jmpntAddr := c.code.NextInstruction()
		c.code.PushLoadLit(bytecode.JMPNT, dest, 0) // patched below
		if err := c.compileEval(body, dest); err != nil {
			return err
		}
		jmpAddr := c.code.NextInstruction()
		c.code.PushLoadLit(bytecode.JMP, 0, 0) // patched below
		endJumps = append(endJumps, jmpAddr)
		offset := c.code.NextInstruction() - jmpntAddr - 1
		c.code.Patch(jmpntAddr, bytecode.EncodeLit(bytecode.JMPNT, dest, uint16(int16(offset))))
	}

	c.resetReg(save)
	c.code.PushOp1(bytecode.LOADNIL, dest)

	end := c.code.NextInstruction()
	for _, addr := range endJumps {
		offset := end - addr - 1
		c.code.Patch(addr, bytecode.EncodeLit(bytecode.JMP, 0, uint16(int16(offset))))
	}
	return nil
}

// compileApplyAssign compiles (set sym expr): evaluate expr, then
// store it into sym's global binding, per compiler.rs's
// compile_apply_assign.
func (c *Compiler) compileApplyAssign(args heap.TaggedPtr, dest uint8) error {
	sym, expr, err := heap.ExactlyTwo(c.h, args)
	if err != nil {
		return err
	}
	if _, ok := symbolName(c.h, sym); !ok {
		return rerr.Eval("set: first argument must be a symbol")
	}
	if err := c.compileEval(expr, dest); err != nil {
		return err
	}
	litID, err := c.code.PushLit(sym)
	if err != nil {
		return err
	}
	nameReg, err := c.acquireReg()
	if err != nil {
		return err
	}
	c.code.PushLoadLit(bytecode.LOADLIT, nameReg, litID)
	c.code.PushOp2(bytecode.STOREGLOBAL, nameReg, dest)
	c.resetReg(nameReg)
	return nil
}

// compileNamedFunction compiles (def name (params...) expr...): builds
// a nested Compiler for the function body, wraps it as a Function
// value, and stores it under name in the global table, per
// compiler.rs's compile_named_function / the free compile_function
// helper.
func (c *Compiler) compileNamedFunction(args heap.TaggedPtr, dest uint8) error {
	items, err := heap.ListItems(c.h, args)
	if err != nil {
		return err
	}
	if len(items) < 3 {
		return rerr.Eval("def: expected (def name (params...) expr...)")
	}
	nameArg := items[0]
	paramsArg := items[1]
	bodyExprs := items[2:]

	name, ok := symbolName(c.h, nameArg)
	if !ok && !nameArg.IsNil() {
		return rerr.Eval("def: name must be a symbol or nil")
	}

	params, err := heap.ListItems(c.h, paramsArg)
	if err != nil {
		return err
	}
	if len(params) > maxArity {
		return rerr.Eval("def: function arity %d exceeds maximum of %d", len(params), maxArity)
	}
	if len(bodyExprs) < 1 {
		return rerr.Eval("def: function body must have at least one expression")
	}

	fnScope := &scope{bindings: make(map[string]uint8)}
	for i, p := range params {
		pname, ok := symbolName(c.h, p)
		if !ok {
			return rerr.Eval("def: parameter must be a symbol")
		}
		fnScope.bindings[pname] = uint8(i)
	}

	fc, err := newCompiler(c.s, name, fnScope)
	if err != nil {
		return err
	}
	fc.nextReg = uint8(len(params))
	resultReg, err := fc.acquireReg()
	if err != nil {
		return err
	}
	for _, expr := range bodyExprs {
		fc.resetReg(resultReg + 1)
		if err := fc.compileEval(expr, resultReg); err != nil {
			return err
		}
	}
	fc.code.PushOp1(bytecode.RETURN, resultReg)

	_, fnPtr := bytecode.NewFunction(c.s, nameArg, uint8(len(params)), fc.code)

	if err := c.loadLiteral(fnPtr, dest); err != nil {
		return err
	}
	if !nameArg.IsNil() {
		litID, err := c.code.PushLit(nameArg)
		if err != nil {
			return err
		}
		nameReg, err := c.acquireReg()
		if err != nil {
			return err
		}
		c.code.PushLoadLit(bytecode.LOADLIT, nameReg, litID)
		c.code.PushOp2(bytecode.STOREGLOBAL, nameReg, dest)
		c.resetReg(nameReg)
	}
	return nil
}

// compileCall compiles a generic function application: the callee
// expression and each argument are evaluated into consecutive
// registers above dest, and a CALL instruction names the callee
// register and argument count (DESIGN.md OQ-3's call-frame convention).
func (c *Compiler) compileCall(callee heap.TaggedPtr, args heap.TaggedPtr, dest uint8) error {
	argItems, err := heap.ListItems(c.h, args)
	if err != nil {
		return err
	}
	save := c.nextReg
	calleeReg, err := c.acquireReg()
	if err != nil {
		return err
	}
	if err := c.compileEval(callee, calleeReg); err != nil {
		return err
	}
	if len(argItems) > 255 {
		return rerr.Eval("call: more than 255 arguments")
	}
	for _, arg := range argItems {
		argReg, err := c.acquireReg()
		if err != nil {
			return err
		}
		if err := c.compileEval(arg, argReg); err != nil {
			return err
		}
	}
	c.code.PushOp3(bytecode.CALL, dest, calleeReg, uint8(len(argItems)))
	c.resetReg(save)
	if dest >= c.nextReg {
		c.nextReg = dest + 1
	}
	return nil
}
