package rill

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rill-lang/rill/internal/config"
)

func TestEvalReturnsLastValue(t *testing.T) {
	eng := New()
	got, err := eng.Eval("1 + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(7) {
		t.Errorf("got %v (%T), want 7", got, got)
	}
}

func TestGlobalsPersistAcrossEvalCalls(t *testing.T) {
	eng := New()
	if _, err := eng.Eval("let counter = 10"); err != nil {
		t.Fatal(err)
	}
	got, err := eng.Eval("counter + 1")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(11) {
		t.Errorf("got %v, want 11", got)
	}
}

func TestClosureOutlivesScript(t *testing.T) {
	// The external-closure scenario: the script is done, its scope is
	// gone, and the returned pointer still reads and writes the
	// captured cell.
	eng := New()
	v, err := eng.Eval(`
let x = 8
let f = |y| x + y
x = 20
f
`)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := v.(*Closure)
	if !ok {
		t.Fatalf("expected *Closure, got %T", v)
	}
	if c.Arity() != 1 {
		t.Errorf("arity = %d, want 1", c.Arity())
	}

	got, err := c.Call(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(22) {
		t.Errorf("got %v, want 22", got)
	}
}

func TestClosureWritesBackIntoScriptScope(t *testing.T) {
	eng := New()
	v, err := eng.Eval(`
let hits = 0
let bump = || { hits += 1 }
bump
`)
	if err != nil {
		t.Fatal(err)
	}
	c := v.(*Closure)
	for i := 0; i < 3; i++ {
		if _, err := c.Call(); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := eng.Get("hits")
	if err != nil {
		t.Fatal(err)
	}
	if hits != int64(3) {
		t.Errorf("hits = %v, want 3", hits)
	}
}

func TestBindGoFunction(t *testing.T) {
	eng := New()
	if err := eng.Bind("add", func(a, b int) int { return a + b }); err != nil {
		t.Fatal(err)
	}
	got, err := eng.Eval("add(40, 2)")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestBindGoFunctionWithError(t *testing.T) {
	eng := New()
	err := eng.Bind("fail", func() (int, error) {
		return 0, errTest
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = eng.Eval("fail()")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected wrapped Go error, got %v", err)
	}
}

func TestBindValueAndSlices(t *testing.T) {
	eng := New()
	if err := eng.Bind("limit", 10); err != nil {
		t.Fatal(err)
	}
	if err := eng.Bind("xs", []int{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	got, err := eng.Eval("len(xs) + limit")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(13) {
		t.Errorf("got %v, want 13", got)
	}
}

func TestListMarshalsToSlice(t *testing.T) {
	eng := New()
	got, err := eng.Eval("[1, 2, 3]")
	if err != nil {
		t.Fatal(err)
	}
	want := []interface{}{int64(1), int64(2), int64(3)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCallNamedFunction(t *testing.T) {
	eng := New()
	if _, err := eng.Eval("fn triple(n) {\n    n * 3\n}"); err != nil {
		t.Fatal(err)
	}
	got, err := eng.Call("triple", 14)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestScriptErrorsBecomeGoErrors(t *testing.T) {
	eng := New()
	_, err := eng.Eval("1 / 0")
	if err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("expected division error, got %v", err)
	}
}

func TestCompileErrorsAreReportedBeforeExecution(t *testing.T) {
	eng := New()
	var buf bytes.Buffer
	eng.SetStdout(&buf)

	_, err := eng.Eval("print(\"side effect\")\nghost")
	if err == nil || !strings.Contains(err.Error(), "identifier not found") {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should run when resolution fails")
	}
}

func TestDisableCaptureConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DisableCapture = true
	eng := NewWithConfig(cfg)

	_, err := eng.Eval("let x = 1\nlet f = || x")
	if err == nil || !strings.Contains(err.Error(), "capture is disabled") {
		t.Errorf("expected capture-disabled error, got %v", err)
	}
}

var errTest = errBoom{}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
