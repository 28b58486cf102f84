package evaluator

import "github.com/rill-lang/rill/internal/ast"

// CaptureNames computes the capture set of an anonymous function: the free
// variables of its body, in first-use order. A name is free when the body
// reads or assigns it and no enclosing construct inside the literal binds
// it first (parameters, let declarations, parameters of nested literals).
// The defining scope is not consulted here; resolving each name against it
// happens when the literal is evaluated.
func CaptureNames(lit *ast.FunctionLiteral) []string {
	s := &captureScanner{
		seen: make(map[string]bool),
	}
	s.pushScope()
	for _, p := range lit.Parameters {
		s.bind(p.Value)
	}
	s.scanBlock(lit.Body)
	return s.order
}

type captureScanner struct {
	bound []map[string]bool // lexical scopes inside the literal, innermost last
	seen  map[string]bool
	order []string
}

func (s *captureScanner) pushScope() {
	s.bound = append(s.bound, make(map[string]bool))
}

func (s *captureScanner) popScope() {
	s.bound = s.bound[:len(s.bound)-1]
}

func (s *captureScanner) bind(name string) {
	s.bound[len(s.bound)-1][name] = true
}

func (s *captureScanner) isBound(name string) bool {
	for i := len(s.bound) - 1; i >= 0; i-- {
		if s.bound[i][name] {
			return true
		}
	}
	return false
}

func (s *captureScanner) ref(name string) {
	// "this" is bound by the call protocol, never captured.
	if name == "this" {
		return
	}
	if s.isBound(name) || s.seen[name] {
		return
	}
	s.seen[name] = true
	s.order = append(s.order, name)
}

func (s *captureScanner) scanBlock(block *ast.BlockStatement) {
	if block == nil {
		return
	}
	s.pushScope()
	for _, stmt := range block.Statements {
		s.scanStatement(stmt)
	}
	s.popScope()
}

func (s *captureScanner) scanStatement(stmt ast.Statement) {
	switch node := stmt.(type) {
	case *ast.LetStatement:
		// The initializer is scanned before the name is bound, so
		// `let x = x` inside the body captures the outer x.
		s.scanExpression(node.Value)
		s.bind(node.Name.Value)
	case *ast.ReturnStatement:
		if node.Value != nil {
			s.scanExpression(node.Value)
		}
	case *ast.WhileStatement:
		s.scanExpression(node.Condition)
		s.scanBlock(node.Body)
	case *ast.ExpressionStatement:
		s.scanExpression(node.Expression)
	case *ast.BlockStatement:
		s.scanBlock(node)
	case *ast.FunctionStatement:
		// Named function declarations are not allowed inside function
		// bodies by the grammar; nothing to scan if one slips through.
	}
}

func (s *captureScanner) scanExpression(expr ast.Expression) {
	switch node := expr.(type) {
	case *ast.Identifier:
		s.ref(node.Value)
	case *ast.PrefixExpression:
		s.scanExpression(node.Right)
	case *ast.InfixExpression:
		s.scanExpression(node.Left)
		s.scanExpression(node.Right)
	case *ast.AssignExpression:
		// An assignment target is a use of the outer variable too:
		// |n| { x = n } captures x.
		s.ref(node.Name.Value)
		s.scanExpression(node.Value)
	case *ast.IfExpression:
		s.scanExpression(node.Condition)
		s.scanBlock(node.Consequence)
		s.scanBlock(node.Alternative)
	case *ast.CallExpression:
		s.scanExpression(node.Function)
		for _, arg := range node.Arguments {
			s.scanExpression(arg)
		}
	case *ast.MethodCallExpression:
		// The method name resolves against the receiver, not the scope.
		s.scanExpression(node.Receiver)
		for _, arg := range node.Arguments {
			s.scanExpression(arg)
		}
	case *ast.IndexExpression:
		s.scanExpression(node.Left)
		s.scanExpression(node.Index)
	case *ast.ListLiteral:
		for _, el := range node.Elements {
			s.scanExpression(el)
		}
	case *ast.FunctionLiteral:
		// A nested literal's free variables are free variables of the
		// enclosing literal too, unless something here binds them.
		s.pushScope()
		for _, p := range node.Parameters {
			s.bind(p.Value)
		}
		s.scanBlock(node.Body)
		s.popScope()
	}
}
