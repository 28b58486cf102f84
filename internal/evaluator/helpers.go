package evaluator

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
)

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func (e *Evaluator) newErrorWithLocation(node ast.TokenProvider, format string, args ...interface{}) *Error {
	tok := node.GetToken()
	err := &Error{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
	if len(e.CallStack) > 0 {
		err.StackTrace = make([]StackFrame, len(e.CallStack))
		copy(err.StackTrace, e.CallStack)
	}
	return err
}

// PushCall records a stack frame for error reporting. Returns false when
// the call depth limit is exceeded.
func (e *Evaluator) PushCall(name string, line, column int) bool {
	if len(e.CallStack) >= e.Config.MaxCallDepth {
		return false
	}
	e.CallStack = append(e.CallStack, StackFrame{
		Name:   name,
		File:   e.CurrentFile,
		Line:   line,
		Column: column,
	})
	return true
}

func (e *Evaluator) PopCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// deref unwraps a shared cell to its current contents. Values flow through
// the evaluator raw (cells included) so that identity survives to the
// places that need it; operators and anything that consumes a value calls
// deref first.
func deref(obj Object) Object {
	if cell, ok := obj.(*SharedCell); ok {
		return cell.Get()
	}
	return obj
}

func derefAll(objs []Object) []Object {
	out := make([]Object, len(objs))
	for i, obj := range objs {
		out[i] = deref(obj)
	}
	return out
}

func unwrapReturnValue(obj Object) Object {
	if rv, ok := obj.(*ReturnValue); ok {
		return rv.Value
	}
	return obj
}

func isTruthy(obj Object) bool {
	switch obj {
	case NIL, FALSE:
		return false
	case TRUE:
		return true
	}
	switch o := obj.(type) {
	case *Boolean:
		return o.Value
	case *Nil:
		return false
	default:
		return true
	}
}

func objectsEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Integer:
		if r, ok := right.(*Integer); ok {
			return l.Value == r.Value
		}
		if r, ok := right.(*Float); ok {
			return float64(l.Value) == r.Value
		}
	case *Float:
		if r, ok := right.(*Float); ok {
			return l.Value == r.Value
		}
		if r, ok := right.(*Integer); ok {
			return l.Value == float64(r.Value)
		}
	case *String:
		if r, ok := right.(*String); ok {
			return l.Value == r.Value
		}
	case *Boolean:
		if r, ok := right.(*Boolean); ok {
			return l.Value == r.Value
		}
	case *Nil:
		_, ok := right.(*Nil)
		return ok
	case *List:
		if r, ok := right.(*List); ok {
			if len(l.Elements) != len(r.Elements) {
				return false
			}
			for i := range l.Elements {
				if !objectsEqual(deref(l.Elements[i]), deref(r.Elements[i])) {
					return false
				}
			}
			return true
		}
	case *FnPtr:
		if r, ok := right.(*FnPtr); ok {
			return l == r
		}
	}
	return false
}
