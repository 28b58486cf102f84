package parser

import (
	"testing"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diagnostics"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := NewFromSource(input)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Error())
	}
	return program
}

func parseErrors(t *testing.T, input string) []*diagnostics.DiagnosticError {
	t.Helper()
	p := NewFromSource(input)
	p.ParseProgram()
	return p.Errors()
}

func firstExpression(t *testing.T, program *ast.Program) ast.Expression {
	t.Helper()
	if len(program.Statements) == 0 {
		t.Fatal("no statements")
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

func TestLetStatement(t *testing.T) {
	program := parseProgram(t, "let answer = 42")
	stmt, ok := program.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("expected let statement, got %T", program.Statements[0])
	}
	if stmt.Name.Value != "answer" {
		t.Errorf("wrong name: %s", stmt.Name.Value)
	}
	if lit, ok := stmt.Value.(*ast.IntegerLiteral); !ok || lit.Value != 42 {
		t.Errorf("wrong value: %+v", stmt.Value)
	}
}

func TestFunctionStatement(t *testing.T) {
	program := parseProgram(t, "fn add(a, b) {\n    a + b\n}")
	stmt, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("expected fn statement, got %T", program.Statements[0])
	}
	if stmt.Name.Value != "add" {
		t.Errorf("wrong name: %s", stmt.Name.Value)
	}
	if len(stmt.Parameters) != 2 || stmt.Parameters[0].Value != "a" || stmt.Parameters[1].Value != "b" {
		t.Errorf("wrong parameters: %+v", stmt.Parameters)
	}
	if len(stmt.Body.Statements) != 1 {
		t.Errorf("wrong body length: %d", len(stmt.Body.Statements))
	}
}

func TestFunctionLiteralWithParams(t *testing.T) {
	program := parseProgram(t, "|x, y| x + y")
	lit, ok := firstExpression(t, program).(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected function literal")
	}
	if len(lit.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(lit.Parameters))
	}
	if len(lit.Body.Statements) != 1 {
		t.Errorf("single-expression body should wrap into one statement")
	}
}

func TestFunctionLiteralEmptyParams(t *testing.T) {
	// The lexer emits || as one token; the parser reads it as an empty
	// parameter header in prefix position.
	program := parseProgram(t, "|| 42")
	lit, ok := firstExpression(t, program).(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected function literal")
	}
	if len(lit.Parameters) != 0 {
		t.Errorf("expected no parameters, got %d", len(lit.Parameters))
	}
}

func TestFunctionLiteralBlockBody(t *testing.T) {
	program := parseProgram(t, "|n| {\n    let d = n * 2\n    d\n}")
	lit, ok := firstExpression(t, program).(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected function literal")
	}
	if len(lit.Body.Statements) != 2 {
		t.Errorf("expected 2 body statements, got %d", len(lit.Body.Statements))
	}
}

func TestOrStaysLogicalInInfixPosition(t *testing.T) {
	program := parseProgram(t, "a || b")
	infix, ok := firstExpression(t, program).(*ast.InfixExpression)
	if !ok {
		t.Fatalf("expected infix expression, got %T", firstExpression(t, program))
	}
	if infix.Operator != "||" {
		t.Errorf("wrong operator: %s", infix.Operator)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-a * b", "((-a) * b)"},
		{"a < b == c < d", "((a < b) == (c < d))"},
		{"a && b || c", "((a && b) || c)"},
		{"a + f(b)", "(a + f(b))"},
		{"-xs[0]", "(-(xs[0]))"},
	}
	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		got := firstExpression(t, program).String()
		if got != tt.expected {
			t.Errorf("%q parsed as %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestAssignExpression(t *testing.T) {
	program := parseProgram(t, "x += 2")
	assign, ok := firstExpression(t, program).(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expected assign expression")
	}
	if assign.Operator != "+=" || assign.Name.Value != "x" {
		t.Errorf("wrong assign: %+v", assign)
	}
}

func TestAssignIsRightAssociative(t *testing.T) {
	program := parseProgram(t, "a = b = 1")
	outer, ok := firstExpression(t, program).(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expected assign expression")
	}
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Errorf("expected nested assignment on the right, got %T", outer.Value)
	}
}

func TestMethodCallExpression(t *testing.T) {
	program := parseProgram(t, "x.call(f, 1)")
	mc, ok := firstExpression(t, program).(*ast.MethodCallExpression)
	if !ok {
		t.Fatalf("expected method call, got %T", firstExpression(t, program))
	}
	if mc.Method.Value != "call" || len(mc.Arguments) != 2 {
		t.Errorf("wrong method call: %+v", mc)
	}
	if recv, ok := mc.Receiver.(*ast.Identifier); !ok || recv.Value != "x" {
		t.Errorf("wrong receiver: %+v", mc.Receiver)
	}
}

func TestElseIfDesugarsToNestedIf(t *testing.T) {
	program := parseProgram(t, "if a { 1 } else if b { 2 } else { 3 }")
	ifExpr, ok := firstExpression(t, program).(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected if expression")
	}
	if ifExpr.Alternative == nil || len(ifExpr.Alternative.Statements) != 1 {
		t.Fatalf("expected alternative holding the nested if")
	}
	nestedStmt := ifExpr.Alternative.Statements[0].(*ast.ExpressionStatement)
	if _, ok := nestedStmt.Expression.(*ast.IfExpression); !ok {
		t.Errorf("expected nested if, got %T", nestedStmt.Expression)
	}
}

func TestWhileStatement(t *testing.T) {
	program := parseProgram(t, "while i < 10 {\n    i += 1\n}")
	stmt, ok := program.Statements[0].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("expected while statement, got %T", program.Statements[0])
	}
	if stmt.Condition == nil || len(stmt.Body.Statements) != 1 {
		t.Errorf("wrong while: %+v", stmt)
	}
}

func TestStatementsSeparatedBySemicolons(t *testing.T) {
	program := parseProgram(t, "let a = 1; let b = 2; a + b")
	if len(program.Statements) != 3 {
		t.Errorf("expected 3 statements, got %d", len(program.Statements))
	}
}

func TestListLiteralWithTrailingComma(t *testing.T) {
	program := parseProgram(t, "[1, 2, 3,]")
	list, ok := firstExpression(t, program).(*ast.ListLiteral)
	if !ok || len(list.Elements) != 3 {
		t.Errorf("wrong list: %+v", list)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	errs := parseErrors(t, "1 = 2")
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if errs[0].Code != diagnostics.ErrP003 {
		t.Errorf("expected P003, got %s", errs[0].Code)
	}
}

func TestParseErrorDoesNotCascade(t *testing.T) {
	// A broken let on line 1 must not prevent parsing line 2.
	input := "let = 5\nlet ok = 1"
	p := NewFromSource(input)
	program := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error")
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected recovery to keep 1 good statement, got %d", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*ast.LetStatement); !ok {
		t.Errorf("expected recovered let statement")
	}
}

func TestMissingPrefixParseFn(t *testing.T) {
	errs := parseErrors(t, "let a = )")
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if errs[0].Code != diagnostics.ErrP002 {
		t.Errorf("expected P002, got %s", errs[0].Code)
	}
}
