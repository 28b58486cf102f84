package evaluator

import (
	"io"
	"os"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
)

// Evaluator walks the AST and produces objects. One Evaluator serves one
// script execution; it carries the call stack for error reporting and the
// table of named functions, which live in their own namespace separate
// from variables.
type Evaluator struct {
	Config      *config.Config
	CallStack   []StackFrame
	CurrentFile string
	Stdout      io.Writer

	functions map[string]*Function
	frames    []*callFrame
}

// callFrame tracks per-call state that is not lexical: the receiver of a
// method call, if any.
type callFrame struct {
	receiver *receiverBinding
}

// receiverBinding is how "this" reaches the callee. For a shared-cell
// receiver the cell is acquired for the whole call and accessed without
// re-locking; for a plain receiver the value is bound in the call
// environment and copied back on success.
type receiverBinding struct {
	cell  *SharedCell // non-nil for shared receivers
	value Object      // plain receivers only
	name  string      // variable name, for hazard reports
	held  bool        // cell already acquired by an enclosing call
}

func New() *Evaluator {
	return NewWithConfig(config.Default())
}

func NewWithConfig(cfg *config.Config) *Evaluator {
	return &Evaluator{
		Config:    cfg,
		Stdout:    os.Stdout,
		functions: make(map[string]*Function),
	}
}

func (e *Evaluator) currentFrame() *callFrame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// LookupFunction returns a registered named function.
func (e *Evaluator) LookupFunction(name string) (*Function, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

// FunctionNames lists the registered named functions, for seeding the
// analyzer across REPL lines and Eval calls.
func (e *Evaluator) FunctionNames() []string {
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	return names
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		return e.evalProgram(node, env)

	case *ast.LetStatement:
		val := e.Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.Declare(node.Name.Value, val)
		return NIL

	case *ast.FunctionStatement:
		fn := &Function{
			Name:       node.Name.Value,
			Parameters: node.Parameters,
			Body:       node.Body,
			Line:       node.Token.Line,
			Column:     node.Token.Column,
		}
		e.functions[node.Name.Value] = fn
		return NIL

	case *ast.ReturnStatement:
		if node.Value == nil {
			return &ReturnValue{Value: NIL}
		}
		val := e.Eval(node.Value, env)
		if isError(val) {
			return val
		}
		return &ReturnValue{Value: val}

	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node, NewEnclosedEnvironment(env))

	case *ast.Identifier:
		return e.evalIdentifier(node, env)

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NilLiteral:
		return NIL

	case *ast.ListLiteral:
		elements := e.evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &List{Elements: derefAll(elements)}

	case *ast.FunctionLiteral:
		return e.evalFunctionLiteral(node, env)

	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpression(node, deref(right))

	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)

	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)

	case *ast.IfExpression:
		return e.evalIfExpression(node, env)

	case *ast.CallExpression:
		return e.evalCallExpression(node, env)

	case *ast.MethodCallExpression:
		return e.evalMethodCall(node, env)

	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	}

	return newError("unknown node type: %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	// Named functions are hoisted: register every declaration before any
	// statement runs, so call order does not depend on source order.
	for _, stmt := range program.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok {
			e.functions[fs.Name.Value] = &Function{
				Name:       fs.Name.Value,
				Parameters: fs.Parameters,
				Body:       fs.Body,
				Line:       fs.Token.Line,
				Column:     fs.Token.Column,
			}
		}
	}

	var result Object = NIL
	for _, stmt := range program.Statements {
		result = e.Eval(stmt, env)
		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}
	return result
}

// evalBlockStatement runs statements in the given environment. Callers
// decide the scoping: if/while bodies get a fresh enclosed environment,
// function bodies run directly in the call environment.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NIL
	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
	return result
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		cond := e.Eval(node.Condition, env)
		if isError(cond) {
			return cond
		}
		if !isTruthy(deref(cond)) {
			break
		}
		result := e.evalBlockStatement(node.Body, NewEnclosedEnvironment(env))
		if result != nil {
			rt := result.Type()
			if rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
	return NIL
}

// evalExpressions evaluates in order, short-circuiting on the first error.
// Results are raw: shared cells flow through undisturbed so that the call
// protocol can still see their identity.
func (e *Evaluator) evalExpressions(exprs []ast.Expression, env *Environment) []Object {
	var result []Object
	for _, expr := range exprs {
		evaluated := e.Eval(expr, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}
	return result
}
