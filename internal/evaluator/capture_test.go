package evaluator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rill-lang/rill/internal/ast"
)

func parseLiteral(t *testing.T, input string) *ast.FunctionLiteral {
	t.Helper()
	program := mustParse(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[0])
	}
	lit, ok := stmt.Expression.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected function literal, got %T", stmt.Expression)
	}
	return lit
}

func TestCaptureNames(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`|y| x + y`, []string{"x"}},
		{`|x, y| x + y`, nil},
		{`|| a + b + a`, []string{"a", "b"}},
		{`|y| { let z = y; z + w }`, []string{"w"}},
		{`|| { let x = x; x }`, []string{"x"}},
		{`|n| { total = total + n }`, []string{"total"}},
		{`|| this + x`, []string{"x"}},
		{`|| { let inner = |y| outer + y; inner(1) }`, []string{"outer"}},
		{`|a| { while a > 0 { a = a - step } }`, []string{"step"}},
		{`|| xs[i]`, []string{"xs", "i"}},
		{`|| recv.method(arg)`, []string{"recv", "arg"}},
		{`|| if cond { yes } else { no }`, []string{"cond", "yes", "no"}},
	}

	for _, tt := range tests {
		lit := parseLiteral(t, tt.input)
		got := CaptureNames(lit)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("CaptureNames(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestCaptureNamesFirstUseOrder(t *testing.T) {
	lit := parseLiteral(t, `|| b + a + b + c`)
	got := CaptureNames(lit)
	want := []string{"b", "a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCaptureNamesLetBindsAfterInitializer(t *testing.T) {
	// The initializer sees the outer variable, later uses see the local.
	lit := parseLiteral(t, `|| { let n = n + 1; n }`)
	got := CaptureNames(lit)
	want := []string{"n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCaptureNamesNestedLiteralParams(t *testing.T) {
	// The inner literal's parameter shadows; only the free remainder
	// propagates out.
	lit := parseLiteral(t, `|| { let f = |x| x + y; f }`)
	got := CaptureNames(lit)
	want := []string{"y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
