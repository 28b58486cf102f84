package evaluator

import "testing"

func TestSharedCellGetSet(t *testing.T) {
	cell := NewSharedCell(&Integer{Value: 1}, false)
	testIntegerObject(t, cell.Get(), 1)

	cell.Set(&Integer{Value: 2})
	testIntegerObject(t, cell.Get(), 2)
}

func TestSharedCellOwnerCount(t *testing.T) {
	cell := NewSharedCell(NIL, false)
	if cell.Owners() != 1 {
		t.Fatalf("fresh cell should have 1 owner, got %d", cell.Owners())
	}
	cell.Retain()
	cell.Retain()
	if cell.Owners() != 3 {
		t.Errorf("expected 3 owners, got %d", cell.Owners())
	}
}

func TestSharedCellExclusiveAccess(t *testing.T) {
	cell := NewSharedCell(&Integer{Value: 10}, false)
	cell.Acquire()
	if cell.depth != 1 {
		t.Errorf("expected depth 1 after acquire, got %d", cell.depth)
	}
	cell.SetValue(&Integer{Value: 20})
	testIntegerObject(t, cell.Value(), 20)
	cell.Release()
	if cell.depth != 0 {
		t.Errorf("expected depth 0 after release, got %d", cell.depth)
	}
}

func TestSharedCellThreadedMode(t *testing.T) {
	cell := NewSharedCell(&Integer{Value: 5}, true)
	cell.Retain()
	if cell.Owners() != 2 {
		t.Errorf("expected 2 owners, got %d", cell.Owners())
	}
	cell.Set(&Integer{Value: 7})
	testIntegerObject(t, cell.Get(), 7)
}

func TestPromoteCopiesPlainValue(t *testing.T) {
	env := NewEnvironment()
	env.Declare("x", &Integer{Value: 42})

	cell, ok := env.Promote("x", false)
	if !ok {
		t.Fatal("promote failed")
	}
	testIntegerObject(t, cell.Get(), 42)

	// The slot now stores the cell itself.
	raw, _ := env.Get("x")
	if raw != Object(cell) {
		t.Error("slot should hold the cell after promotion")
	}
}

func TestPromoteIsIdempotent(t *testing.T) {
	env := NewEnvironment()
	env.Declare("x", &Integer{Value: 1})

	first, _ := env.Promote("x", false)
	second, _ := env.Promote("x", false)
	if first != second {
		t.Error("second promotion must reuse the existing cell, not allocate")
	}
}

func TestPromoteResolvesThroughOuterScopes(t *testing.T) {
	outer := NewEnvironment()
	outer.Declare("x", &Integer{Value: 5})
	inner := NewEnclosedEnvironment(outer)

	cell, ok := inner.Promote("x", false)
	if !ok {
		t.Fatal("promote through outer scope failed")
	}

	// Shadowing: an inner declaration wins over the outer one.
	inner.Declare("x", &Integer{Value: 99})
	shadow, _ := inner.Promote("x", false)
	if shadow == cell {
		t.Error("inner declaration must promote its own slot")
	}
}

func TestUpdateWritesThroughCell(t *testing.T) {
	env := NewEnvironment()
	env.Declare("x", &Integer{Value: 1})
	cell, _ := env.Promote("x", false)

	if !env.Update("x", &Integer{Value: 77}) {
		t.Fatal("update failed")
	}
	testIntegerObject(t, cell.Get(), 77)

	// The slot still holds the same cell: promotion never reverses.
	raw, _ := env.Get("x")
	if raw != Object(cell) {
		t.Error("update must write through the cell, not replace the slot")
	}
}

func TestUpdateMissingName(t *testing.T) {
	env := NewEnvironment()
	if env.Update("ghost", NIL) {
		t.Error("update of an undeclared name should fail")
	}
}
