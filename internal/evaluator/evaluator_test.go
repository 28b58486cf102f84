package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rill-lang/rill/internal/config"
)

func TestEvalIntegerExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"-5", -5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"17 % 5", 2},
		{"10 / 2 - 1", 4},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestEvalBooleanExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"1 < 2", true},
		{"1 >= 2", false},
		{"1 == 1 && 2 == 2", true},
		{"false || true", true},
		{"!true", false},
		{"\"a\" < \"b\"", true},
		{"nil == nil", true},
		{"1 != 1.0", false},
	}
	for _, tt := range tests {
		result, ok := testEval(t, tt.input).(*Boolean)
		if !ok {
			t.Fatalf("%q: expected boolean", tt.input)
		}
		if result.Value != tt.expected {
			t.Errorf("%q: got %t, want %t", tt.input, result.Value, tt.expected)
		}
	}
}

func TestShortCircuitSkipsRightSide(t *testing.T) {
	// The right operand would fail if evaluated.
	input := `
let xs = []
false && xs[99] == 1
`
	result, ok := testEval(t, input).(*Boolean)
	if !ok || result.Value {
		t.Errorf("expected false, got %+v", result)
	}
}

func TestLetAndAssignment(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5\na", 5},
		{"let a = 5\na = 10\na", 10},
		{"let a = 5\na += 3\na", 8},
		{"let a = 5\na -= 3\na *= 2\na", 4},
		{"let a = 0\nlet b = 0\na = b = 7\na + b", 14},
	}
	for _, tt := range tests {
		testIntegerObject(t, deref(testEval(t, tt.input)), tt.expected)
	}
}

func TestIfExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if true { 10 }", int64(10)},
		{"if false { 10 }", nil},
		{"if 1 < 2 { 1 } else { 2 }", int64(1)},
		{"if 1 > 2 { 1 } else if 1 == 1 { 3 } else { 2 }", int64(3)},
		{"let x = if true { 5 } else { 6 }\nx", int64(5)},
	}
	for _, tt := range tests {
		result := testEval(t, tt.input)
		if tt.expected == nil {
			if result != NIL {
				t.Errorf("%q: expected nil, got %+v", tt.input, result)
			}
			continue
		}
		testIntegerObject(t, result, tt.expected.(int64))
	}
}

func TestWhileLoop(t *testing.T) {
	input := `
let sum = 0
let i = 1
while i <= 10 {
    sum += i
    i += 1
}
sum
`
	testIntegerObject(t, testEval(t, input), 55)
}

func TestReturnInsideFunction(t *testing.T) {
	input := `
fn classify(n) {
    if n < 0 {
        return "negative"
    }
    "non-negative"
}
classify(-5)
`
	result, ok := testEval(t, input).(*String)
	if !ok || result.Value != "negative" {
		t.Errorf("expected \"negative\", got %+v", result)
	}
}

func TestListsAndIndexing(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"[1, 2, 3][0]", 1},
		{"let xs = [1, 2, 3]\nxs[1] + xs[2]", 5},
		{"len([1, 2, 3])", 3},
		{"let xs = []\npush(xs, 9)\nxs[0]", 9},
		{"len([1] + [2, 3])", 3},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestBuiltinMethodSugar(t *testing.T) {
	// recv.name(args) falls back to name(recv, args) for builtins.
	input := `
let xs = [1, 2]
xs.push(3)
xs.len()
`
	testIntegerObject(t, testEval(t, input), 3)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`type_of(1)`, "INTEGER"},
		{`type_of(1.5)`, "FLOAT"},
		{`type_of("s")`, "STRING"},
		{`type_of(|x| x)`, "FN_PTR"},
	}
	for _, tt := range tests {
		result, ok := testEval(t, tt.input).(*String)
		if !ok || result.Value != tt.expected {
			t.Errorf("%q: got %+v, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestPrintGoesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	e := NewWithConfig(config.Default())
	e.Stdout = &buf
	e.Eval(mustParse(t, `print("hello", 42)`), NewEnvironment())
	if got := buf.String(); got != "hello 42\n" {
		t.Errorf("print output = %q", got)
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	input := "let a = 1\na + \"s\""
	errObj := testErrorContains(t, testEval(t, input), "type mismatch")
	if errObj.Line != 2 {
		t.Errorf("expected error on line 2, got %d", errObj.Line)
	}
}

func TestDivisionByZero(t *testing.T) {
	testErrorContains(t, testEval(t, "1 / 0"), "division by zero")
	testErrorContains(t, testEval(t, "5 % 0"), "division by zero")
}

func TestIdentifierNotFound(t *testing.T) {
	testErrorContains(t, testEval(t, "ghost"), "identifier not found: ghost")
}

func TestIndexOutOfRange(t *testing.T) {
	testErrorContains(t, testEval(t, "[1, 2][5]"), "index out of range")
}

func TestThisOutsideMethodCall(t *testing.T) {
	testErrorContains(t, testEval(t, "this + 1"), "'this' outside of a method call")
}

func TestNamedFunctionsArePure(t *testing.T) {
	// fn bodies never see the defining scope, only parameters and other
	// named functions.
	input := `
let secret = 42
fn peek() {
    secret
}
peek()
`
	testErrorContains(t, testEval(t, input), "identifier not found: secret")
}

func TestStackTraceNamesCallChain(t *testing.T) {
	input := `
fn inner() {
    boom
}
fn outer() {
    inner()
}
outer()
`
	errObj := testErrorContains(t, testEval(t, input), "identifier not found: boom")
	if len(errObj.StackTrace) != 2 {
		t.Fatalf("expected 2 stack frames, got %d", len(errObj.StackTrace))
	}
	rendered := errObj.Inspect()
	if !strings.Contains(rendered, "outer") || !strings.Contains(rendered, "inner") {
		t.Errorf("stack trace missing frames:\n%s", rendered)
	}
}

func TestBlockScopedDeclarations(t *testing.T) {
	input := `
let x = 1
if true {
    let x = 2
}
x
`
	testIntegerObject(t, testEval(t, input), 1)
}

func TestAssignmentAliasesSharedCell(t *testing.T) {
	// Plain assignment stores the slot's raw representation: assigning a
	// promoted variable to a new name shares the same storage.
	input := `
let x = 1
let keep = || x
let y = x
y = 50
x
`
	testIntegerObject(t, deref(testEval(t, input)), 50)
}
