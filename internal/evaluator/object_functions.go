package evaluator

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/rill-lang/rill/internal/ast"
)

// Function is a compiled, context-free callable: a body plus parameter
// names. It deliberately carries no environment reference. Anonymous
// functions reach outer variables only through the NumCaptured leading
// parameters synthesized by capture analysis; every apparent outer-scope
// read inside the body is, after that desugaring, an ordinary parameter
// read.
type Function struct {
	Name        string // empty for anonymous functions
	Parameters  []*ast.Identifier
	Body        *ast.BlockStatement
	NumCaptured int // leading parameters synthesized for captured variables
	Line        int // source location for stack traces
	Column      int
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Value
	}
	if f.Name != "" {
		return fmt.Sprintf("fn %s(%s) { ... }", f.Name, strings.Join(params, ", "))
	}
	return fmt.Sprintf("|%s| { ... }", strings.Join(params[f.NumCaptured:], ", "))
}
func (f *Function) Hash() uint32 {
	// Use pointer address for function identity
	return uint32(uintptr(unsafe.Pointer(f)))
}

// DisplayName returns the function's name for stack traces.
func (f *Function) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return "<anonymous>"
}

// FnPtr is the function-pointer value: a reference to a compiled function
// plus an ordered list of pre-bound arguments. The first Fn.NumCaptured
// entries of Bound are the shared cells produced by promotion (the cells
// themselves, never copies of their contents; binding the cell is what
// makes mutation-after-capture observable). Later entries are values
// pre-bound by curry(). A FnPtr is immutable once constructed; calling it
// appends call-time arguments after the pre-bound ones.
type FnPtr struct {
	Fn    *Function
	Bound []Object
}

func (fp *FnPtr) Type() ObjectType { return FN_PTR_OBJ }
func (fp *FnPtr) Inspect() string {
	if len(fp.Bound) == 0 {
		return fp.Fn.Inspect()
	}
	return fmt.Sprintf("%s <%d bound>", fp.Fn.Inspect(), len(fp.Bound))
}
func (fp *FnPtr) Hash() uint32 {
	h := fp.Fn.Hash()
	for _, b := range fp.Bound {
		h = 31*h + b.Hash()
	}
	return h
}

// Curry returns a new FnPtr with extra pre-bound arguments appended.
// The original is left untouched.
func (fp *FnPtr) Curry(args []Object) *FnPtr {
	bound := make([]Object, 0, len(fp.Bound)+len(args))
	bound = append(bound, fp.Bound...)
	for _, arg := range args {
		if cell, ok := arg.(*SharedCell); ok {
			cell.Retain()
		}
		bound = append(bound, arg)
	}
	return &FnPtr{Fn: fp.Fn, Bound: bound}
}

// Builtin Function
type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Fn   BuiltinFunction
	Name string
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function " + b.Name }
func (b *Builtin) Hash() uint32     { return hashString(b.Name) }
