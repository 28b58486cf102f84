package analyzer

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/diagnostics"
	"github.com/rill-lang/rill/internal/evaluator"
)

// Analyzer is the definition-time resolution pass. It walks the program
// with a lexical scope stack and reports every name that cannot resolve
// before anything executes. The rules mirror the runtime exactly:
//
//   - script-level code sees script variables, named functions, builtins;
//   - named function bodies are pure: parameters, builtins and other
//     named functions only, never the defining scope;
//   - anonymous function bodies additionally reach enclosing variables,
//     which become captures. With capture disabled those references are
//     errors here instead of silently failing at runtime.
type Analyzer struct {
	cfg     *config.Config
	globals map[string]bool
	scopes  []scope
	errors  []*diagnostics.DiagnosticError
}

// scope is one lexical level. boundary levels start a function body;
// allowCapture distinguishes anonymous functions from named ones.
type scope struct {
	names        map[string]bool
	boundary     bool
	allowCapture bool
}

func New(cfg *config.Config) *Analyzer {
	a := &Analyzer{
		cfg:     cfg,
		globals: make(map[string]bool),
	}
	for _, name := range evaluator.BuiltinNames() {
		a.globals[name] = true
	}
	return a
}

// Predeclare registers names that exist before the program runs: REPL
// session variables and host bindings.
func (a *Analyzer) Predeclare(names []string) {
	if len(a.scopes) == 0 {
		a.pushScope(false, false)
	}
	for _, name := range names {
		a.scopes[0].names[name] = true
	}
}

func (a *Analyzer) Errors() []*diagnostics.DiagnosticError {
	return a.errors
}

func (a *Analyzer) Analyze(program *ast.Program) {
	// Named functions are hoisted: visible everywhere regardless of
	// declaration order.
	for _, stmt := range program.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok {
			a.globals[fs.Name.Value] = true
		}
	}
	if len(a.scopes) == 0 {
		a.pushScope(false, false)
	}
	for _, stmt := range program.Statements {
		a.analyzeStatement(stmt)
	}
}

func (a *Analyzer) pushScope(boundary, allowCapture bool) {
	a.scopes = append(a.scopes, scope{
		names:        make(map[string]bool),
		boundary:     boundary,
		allowCapture: allowCapture,
	})
}

func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *Analyzer) declare(name string) {
	a.scopes[len(a.scopes)-1].names[name] = true
}

func (a *Analyzer) resolve(ident *ast.Identifier) {
	name := ident.Value
	if name == "this" {
		// Receiver binding is a call-time concern.
		return
	}

	crossedBoundary := false
	crossedCapture := false
	captureAllowed := true
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if a.scopes[i].names[name] {
			if !crossedBoundary {
				return
			}
			if !captureAllowed {
				// Named function bodies never reach the defining scope;
				// the name might as well not exist.
				break
			}
			if a.cfg.DisableCapture {
				a.errors = append(a.errors, diagnostics.NewError(
					diagnostics.ErrA003, ident.GetToken(),
					"cannot capture variable '%s': variable capture is disabled", name))
			}
			return
		}
		if a.scopes[i].boundary {
			crossedBoundary = true
			if a.scopes[i].allowCapture {
				crossedCapture = true
			} else {
				captureAllowed = false
			}
		}
	}

	if a.globals[name] {
		return
	}

	if crossedCapture {
		a.errors = append(a.errors, diagnostics.NewError(
			diagnostics.ErrA002, ident.GetToken(),
			"unresolved variable in closure: %s", name))
		return
	}
	a.errors = append(a.errors, diagnostics.NewError(
		diagnostics.ErrA001, ident.GetToken(),
		"identifier not found: %s", name))
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement) {
	switch node := stmt.(type) {
	case *ast.LetStatement:
		a.analyzeExpression(node.Value)
		a.declare(node.Name.Value)
	case *ast.FunctionStatement:
		a.pushScope(true, false)
		for _, p := range node.Parameters {
			a.declare(p.Value)
		}
		a.analyzeBlock(node.Body)
		a.popScope()
	case *ast.ReturnStatement:
		if node.Value != nil {
			a.analyzeExpression(node.Value)
		}
	case *ast.WhileStatement:
		a.analyzeExpression(node.Condition)
		a.pushScope(false, false)
		a.analyzeBlock(node.Body)
		a.popScope()
	case *ast.ExpressionStatement:
		a.analyzeExpression(node.Expression)
	case *ast.BlockStatement:
		a.pushScope(false, false)
		a.analyzeBlock(node)
		a.popScope()
	}
}

func (a *Analyzer) analyzeBlock(block *ast.BlockStatement) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		a.analyzeStatement(stmt)
	}
}

func (a *Analyzer) analyzeExpression(expr ast.Expression) {
	switch node := expr.(type) {
	case *ast.Identifier:
		a.resolve(node)
	case *ast.PrefixExpression:
		a.analyzeExpression(node.Right)
	case *ast.InfixExpression:
		a.analyzeExpression(node.Left)
		a.analyzeExpression(node.Right)
	case *ast.AssignExpression:
		a.resolve(node.Name)
		a.analyzeExpression(node.Value)
	case *ast.IfExpression:
		a.analyzeExpression(node.Condition)
		a.pushScope(false, false)
		a.analyzeBlock(node.Consequence)
		a.popScope()
		if node.Alternative != nil {
			a.pushScope(false, false)
			a.analyzeBlock(node.Alternative)
			a.popScope()
		}
	case *ast.CallExpression:
		a.analyzeExpression(node.Function)
		for _, arg := range node.Arguments {
			a.analyzeExpression(arg)
		}
	case *ast.MethodCallExpression:
		// Method names resolve against the receiver at call time.
		a.analyzeExpression(node.Receiver)
		for _, arg := range node.Arguments {
			a.analyzeExpression(arg)
		}
	case *ast.IndexExpression:
		a.analyzeExpression(node.Left)
		a.analyzeExpression(node.Index)
	case *ast.ListLiteral:
		for _, el := range node.Elements {
			a.analyzeExpression(el)
		}
	case *ast.FunctionLiteral:
		a.pushScope(true, true)
		for _, p := range node.Parameters {
			a.declare(p.Value)
		}
		a.analyzeBlock(node.Body)
		a.popScope()
	}
}
