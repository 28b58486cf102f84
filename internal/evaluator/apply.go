package evaluator

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/token"
)

// evalFunctionLiteral turns an anonymous function into a FnPtr. The free
// variables of the body are resolved against the defining scope right
// here: each one promotes its slot to a shared cell, and the cell is
// pre-bound as a leading curried argument. The compiled function keeps no
// reference to the environment; after this, calling it anywhere behaves
// identically.
func (e *Evaluator) evalFunctionLiteral(lit *ast.FunctionLiteral, env *Environment) Object {
	names := CaptureNames(lit)

	var cells []Object
	var captured []*ast.Identifier
	for _, name := range names {
		if !env.Has(name) {
			// Free names that are really named functions or builtins
			// resolve through the global tables, not by capture.
			if _, ok := e.functions[name]; ok {
				continue
			}
			if _, ok := Builtins[name]; ok {
				continue
			}
			return e.newErrorWithLocation(lit, "unresolved variable in closure: %s", name)
		}
		if e.Config.DisableCapture {
			return e.newErrorWithLocation(lit, "cannot capture variable '%s': variable capture is disabled", name)
		}
		cell, _ := env.Promote(name, e.Config.SyncCells)
		cell.Retain()
		cells = append(cells, cell)
		captured = append(captured, &ast.Identifier{Token: lit.Token, Value: name})
	}

	params := make([]*ast.Identifier, 0, len(captured)+len(lit.Parameters))
	params = append(params, captured...)
	params = append(params, lit.Parameters...)

	fn := &Function{
		Parameters:  params,
		Body:        lit.Body,
		NumCaptured: len(captured),
		Line:        lit.Token.Line,
		Column:      lit.Token.Column,
	}
	return &FnPtr{Fn: fn, Bound: cells}
}

// CallFnPtr invokes a function pointer from host code. This is the
// deferred-call half of the protocol: the FnPtr may have outlived the
// scope it was created in, and still works, because everything it needs
// travels in its pre-bound argument list.
func (e *Evaluator) CallFnPtr(fp *FnPtr, args []Object) Object {
	return e.applyFnPtr(hostCallSite{}, fp, args, nil)
}

type hostCallSite struct{}

func (hostCallSite) GetToken() token.Token { return token.Token{} }

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	callee := e.Eval(node.Function, env)
	if isError(callee) {
		return callee
	}

	args := e.evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	switch fn := deref(callee).(type) {
	case *FnPtr:
		return e.applyFnPtr(node, fn, args, nil)
	case *Builtin:
		return fn.Fn(e, derefAll(args)...)
	default:
		return e.newErrorWithLocation(node, "not a function: %s", deref(callee).Type())
	}
}

// applyFnPtr runs the call protocol. The effective argument list is the
// pre-bound arguments followed by the caller's. Captured (leading
// synthesized) parameters bind their cell raw, so reads see the value at
// call time and writes write through; every other position binds the
// current dereferenced value of whatever was supplied.
//
// A non-nil recv is bound as "this". Shared receivers are held exclusively
// for the duration of the call; the hazard scan runs first, so an
// argument list that aliases the receiver cell fails before the receiver
// is touched.
func (e *Evaluator) applyFnPtr(node ast.TokenProvider, fp *FnPtr, args []Object, recv *receiverBinding) Object {
	fn := fp.Fn

	full := make([]Object, 0, len(fp.Bound)+len(args))
	full = append(full, fp.Bound...)
	full = append(full, args...)

	if len(full) != len(fn.Parameters) {
		return e.newErrorWithLocation(node, "function '%s' expects %d arguments, got %d",
			fn.DisplayName(), len(fn.Parameters)-len(fp.Bound), len(args))
	}

	if recv != nil && recv.cell != nil && !recv.held {
		if !e.Config.SyncCells {
			for _, arg := range full {
				if cell, ok := arg.(*SharedCell); ok && cell == recv.cell {
					return e.newErrorWithLocation(node, "data race detected when accessing variable: %s", recv.name)
				}
			}
			if recv.cell.depth > 0 {
				return e.newErrorWithLocation(node, "data race detected when accessing variable: %s", recv.name)
			}
		}
		recv.cell.Acquire()
		defer recv.cell.Release()
	}

	tok := node.GetToken()
	if !e.PushCall(fn.DisplayName(), tok.Line, tok.Column) {
		return e.newErrorWithLocation(node, "maximum call depth exceeded (%d)", e.Config.MaxCallDepth)
	}
	defer e.PopCall()

	env := NewEnvironment()
	for i, param := range fn.Parameters {
		if i < fn.NumCaptured {
			env.Declare(param.Value, full[i])
		} else {
			env.Declare(param.Value, deref(full[i]))
		}
	}
	if recv != nil && recv.cell == nil {
		env.Declare("this", recv.value)
	}

	e.frames = append(e.frames, &callFrame{receiver: recv})
	result := e.evalBlockStatement(fn.Body, env)
	e.frames = e.frames[:len(e.frames)-1]

	if isError(result) {
		return result
	}
	if recv != nil && recv.cell == nil {
		if v, ok := env.Get("this"); ok {
			recv.value = deref(v)
		}
	}
	return deref(unwrapReturnValue(result))
}

// evalMethodCall dispatches recv.name(args). In resolution order: the
// universal value methods, fnptr.call / fnptr.curry, recv.call(fnptr, ...)
// which rebinds the receiver as "this", named functions invoked
// method-style on the receiver, and builtins with the receiver prepended
// as first argument.
func (e *Evaluator) evalMethodCall(node *ast.MethodCallExpression, env *Environment) Object {
	recvRaw, slotName := e.resolveReceiver(node, env)
	if isError(recvRaw) {
		return recvRaw
	}

	args := e.evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	method := node.Method.Value
	switch method {
	case "is_shared":
		if len(args) != 0 {
			return e.newErrorWithLocation(node, "is_shared takes no arguments")
		}
		_, isCell := recvRaw.(*SharedCell)
		return nativeBoolToBooleanObject(isCell)

	case "shared_count":
		if len(args) != 0 {
			return e.newErrorWithLocation(node, "shared_count takes no arguments")
		}
		if cell, ok := recvRaw.(*SharedCell); ok {
			return &Integer{Value: int64(cell.Owners())}
		}
		return &Integer{Value: 1}

	case "curry":
		fp, ok := deref(recvRaw).(*FnPtr)
		if !ok {
			return e.newErrorWithLocation(node, "curry requires a function pointer, got %s", deref(recvRaw).Type())
		}
		return fp.Curry(args)

	case "call":
		if fp, ok := deref(recvRaw).(*FnPtr); ok {
			return e.applyFnPtr(node, fp, args, nil)
		}
		if len(args) > 0 {
			if fp, ok := deref(args[0]).(*FnPtr); ok {
				return e.callReceiverBound(node, fp, args[1:], recvRaw, slotName, env)
			}
		}
		return e.newErrorWithLocation(node, "call requires a function pointer")
	}

	if fn, ok := e.functions[method]; ok {
		return e.callReceiverBound(node, &FnPtr{Fn: fn}, args, recvRaw, slotName, env)
	}

	if builtin, ok := Builtins[method]; ok {
		callArgs := make([]Object, 0, len(args)+1)
		callArgs = append(callArgs, deref(recvRaw))
		callArgs = append(callArgs, derefAll(args)...)
		return builtin.Fn(e, callArgs...)
	}

	return e.newErrorWithLocation(node, "unknown method: %s", method)
}

// resolveReceiver evaluates the receiver without dereferencing, so a
// promoted variable yields its cell. For a plain identifier the slot name
// comes back too: plain receivers are passed by value and copied back
// after the call, which is how mutation of an unshared receiver becomes
// visible to the caller.
func (e *Evaluator) resolveReceiver(node *ast.MethodCallExpression, env *Environment) (Object, string) {
	if ident, ok := node.Receiver.(*ast.Identifier); ok {
		if ident.Value == "this" {
			if frame := e.currentFrame(); frame != nil && frame.receiver != nil {
				if frame.receiver.cell != nil {
					return frame.receiver.cell, ""
				}
				if val, ok := env.Get("this"); ok {
					return val, "this"
				}
				return frame.receiver.value, "this"
			}
			return e.newErrorWithLocation(node, "'this' outside of a method call"), ""
		}
		if val, ok := env.Get(ident.Value); ok {
			return val, ident.Value
		}
		return e.evalIdentifier(ident, env), ""
	}
	return e.Eval(node.Receiver, env), ""
}

func (e *Evaluator) callReceiverBound(node ast.TokenProvider, fp *FnPtr, args []Object, recvRaw Object, slotName string, env *Environment) Object {
	if cell, ok := recvRaw.(*SharedCell); ok {
		recv := &receiverBinding{cell: cell, name: slotName}
		// A method call on "this" inside a method re-enters the cell the
		// current call already holds; no second acquisition.
		if frame := e.currentFrame(); frame != nil && frame.receiver != nil &&
			frame.receiver.cell == cell {
			recv.held = true
		}
		return e.applyFnPtr(node, fp, args, recv)
	}

	recv := &receiverBinding{value: deref(recvRaw), name: slotName}
	result := e.applyFnPtr(node, fp, args, recv)
	if isError(result) {
		return result
	}
	if slotName != "" {
		env.Update(slotName, recv.value)
	}
	return result
}
