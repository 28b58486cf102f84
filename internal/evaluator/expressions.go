package evaluator

import (
	"math"

	"github.com/rill-lang/rill/internal/ast"
)

// evalIdentifier resolves a name. Variables come back raw: a promoted
// slot yields its shared cell, not the contents. Readers that need the
// value deref; passing the raw result along is what keeps cell identity
// observable for re-capture and the call protocol.
func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if node.Value == "this" {
		if frame := e.currentFrame(); frame != nil && frame.receiver != nil {
			if frame.receiver.cell != nil {
				return frame.receiver.cell.Value()
			}
			if val, ok := env.Get("this"); ok {
				return val
			}
			return frame.receiver.value
		}
		return e.newErrorWithLocation(node, "'this' outside of a method call")
	}

	if val, ok := env.Get(node.Value); ok {
		return val
	}

	if fn, ok := e.functions[node.Value]; ok {
		return &FnPtr{Fn: fn}
	}

	if builtin, ok := Builtins[node.Value]; ok {
		return builtin
	}

	return e.newErrorWithLocation(node, "identifier not found: %s", node.Value)
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *Environment) Object {
	if node.Name.Value == "this" {
		return e.evalThisAssign(node, env)
	}

	val := e.Eval(node.Value, env)
	if isError(val) {
		return val
	}

	if node.Operator != "=" {
		current, ok := env.Get(node.Name.Value)
		if !ok {
			return e.newErrorWithLocation(node, "identifier not found: %s", node.Name.Value)
		}
		val = e.applyCompoundOperator(node, deref(current), deref(val))
		if isError(val) {
			return val
		}
	}

	// Plain assignment stores the evaluated value as-is. Assigning a
	// variable that holds a shared cell therefore aliases the cell into
	// the target slot; both names then share storage.
	if !env.Update(node.Name.Value, val) {
		return e.newErrorWithLocation(node, "identifier not found: %s", node.Name.Value)
	}
	return deref(val)
}

func (e *Evaluator) evalThisAssign(node *ast.AssignExpression, env *Environment) Object {
	frame := e.currentFrame()
	if frame == nil || frame.receiver == nil {
		return e.newErrorWithLocation(node, "'this' outside of a method call")
	}

	val := e.Eval(node.Value, env)
	if isError(val) {
		return val
	}
	val = deref(val)

	if node.Operator != "=" {
		var current Object
		if frame.receiver.cell != nil {
			current = frame.receiver.cell.Value()
		} else if v, ok := env.Get("this"); ok {
			current = deref(v)
		} else {
			current = frame.receiver.value
		}
		val = e.applyCompoundOperator(node, current, val)
		if isError(val) {
			return val
		}
	}

	if frame.receiver.cell != nil {
		// The call protocol already holds this cell exclusively.
		frame.receiver.cell.SetValue(val)
	} else {
		env.Update("this", val)
	}
	return val
}

func (e *Evaluator) applyCompoundOperator(node *ast.AssignExpression, current, operand Object) Object {
	op := node.Operator[:len(node.Operator)-1] // "+=" -> "+"
	result := e.evalBinaryOperation(node, op, current, operand)
	return result
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, right Object) Object {
	switch node.Operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: -r.Value}
		case *Float:
			return &Float{Value: -r.Value}
		}
		return e.newErrorWithLocation(node, "unknown operator: -%s", right.Type())
	}
	return e.newErrorWithLocation(node, "unknown operator: %s%s", node.Operator, right.Type())
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	// Short-circuit operators evaluate the right side lazily.
	if node.Operator == "&&" || node.Operator == "||" {
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		leftTruthy := isTruthy(deref(left))
		if node.Operator == "&&" && !leftTruthy {
			return FALSE
		}
		if node.Operator == "||" && leftTruthy {
			return TRUE
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(deref(right)))
	}

	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return e.evalBinaryOperation(node, node.Operator, deref(left), deref(right))
}

func (e *Evaluator) evalBinaryOperation(node ast.TokenProvider, op string, left, right Object) Object {
	switch op {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	}

	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return e.evalIntegerInfix(node, op, l, r)
		case *Float:
			return e.evalFloatInfix(node, op, float64(l.Value), r.Value)
		}
	case *Float:
		switch r := right.(type) {
		case *Float:
			return e.evalFloatInfix(node, op, l.Value, r.Value)
		case *Integer:
			return e.evalFloatInfix(node, op, l.Value, float64(r.Value))
		}
	case *String:
		if r, ok := right.(*String); ok {
			return e.evalStringInfix(node, op, l, r)
		}
	case *List:
		if op == "+" {
			if r, ok := right.(*List); ok {
				elements := make([]Object, 0, len(l.Elements)+len(r.Elements))
				elements = append(elements, l.Elements...)
				elements = append(elements, r.Elements...)
				return &List{Elements: elements}
			}
		}
	}

	return e.newErrorWithLocation(node, "type mismatch: %s %s %s", left.Type(), op, right.Type())
}

func (e *Evaluator) evalIntegerInfix(node ast.TokenProvider, op string, left, right *Integer) Object {
	switch op {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return e.newErrorWithLocation(node, "division by zero")
		}
		return &Integer{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return e.newErrorWithLocation(node, "division by zero")
		}
		return &Integer{Value: left.Value % right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	}
	return e.newErrorWithLocation(node, "unknown operator: INTEGER %s INTEGER", op)
}

func (e *Evaluator) evalFloatInfix(node ast.TokenProvider, op string, left, right float64) Object {
	switch op {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		if right == 0 {
			return e.newErrorWithLocation(node, "division by zero")
		}
		return &Float{Value: left / right}
	case "%":
		return &Float{Value: math.Mod(left, right)}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	}
	return e.newErrorWithLocation(node, "unknown operator: FLOAT %s FLOAT", op)
}

func (e *Evaluator) evalStringInfix(node ast.TokenProvider, op string, left, right *String) Object {
	switch op {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	}
	return e.newErrorWithLocation(node, "unknown operator: STRING %s STRING", op)
}

func (e *Evaluator) evalIfExpression(node *ast.IfExpression, env *Environment) Object {
	cond := e.Eval(node.Condition, env)
	if isError(cond) {
		return cond
	}
	if isTruthy(deref(cond)) {
		return e.evalBlockStatement(node.Consequence, NewEnclosedEnvironment(env))
	}
	if node.Alternative != nil {
		return e.evalBlockStatement(node.Alternative, NewEnclosedEnvironment(env))
	}
	return NIL
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isError(index) {
		return index
	}

	list, ok := deref(left).(*List)
	if !ok {
		return e.newErrorWithLocation(node, "index operator not supported on %s", deref(left).Type())
	}
	idx, ok := deref(index).(*Integer)
	if !ok {
		return e.newErrorWithLocation(node, "list index must be an integer, got %s", deref(index).Type())
	}
	if idx.Value < 0 || idx.Value >= int64(len(list.Elements)) {
		return e.newErrorWithLocation(node, "index out of range: %d (len %d)", idx.Value, len(list.Elements))
	}
	return list.Elements[idx.Value]
}
