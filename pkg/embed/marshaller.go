package rill

import (
	"fmt"
	"reflect"

	"github.com/rill-lang/rill/internal/evaluator"
)

// Marshaller handles conversion between Go and Rill values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a Rill Object.
func (m *Marshaller) ToValue(val interface{}) (evaluator.Object, error) {
	if val == nil {
		return evaluator.NIL, nil
	}

	// Already an Object (including *FnPtr handed back to us)
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}
	if c, ok := val.(*Closure); ok {
		return c.fp, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Integer{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &evaluator.Integer{Value: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Float{Value: v.Float()}, nil
	case reflect.Bool:
		if v.Bool() {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToList(v)
	case reflect.Func:
		// Handled by Engine.Bind; a bare func can't be converted here.
		return nil, fmt.Errorf("functions must be bound with Bind")
	default:
		return nil, fmt.Errorf("unsupported Go type: %s", v.Type())
	}
}

// FromValue converts a Rill Object to a Go value. targetType is optional;
// when set, the result is converted to that type if possible.
func (m *Marshaller) FromValue(obj evaluator.Object, targetType reflect.Type) (interface{}, error) {
	if obj == nil {
		return nil, nil
	}
	if targetType != nil && targetType == reflect.TypeOf((*evaluator.Object)(nil)).Elem() {
		return obj, nil
	}

	switch o := obj.(type) {
	case *evaluator.SharedCell:
		return m.FromValue(o.Get(), targetType)
	case *evaluator.Integer:
		if targetType != nil {
			switch targetType.Kind() {
			case reflect.Int:
				return int(o.Value), nil
			case reflect.Int64:
				return o.Value, nil
			case reflect.Float64:
				return float64(o.Value), nil
			}
		}
		return o.Value, nil
	case *evaluator.Float:
		return o.Value, nil
	case *evaluator.Boolean:
		return o.Value, nil
	case *evaluator.String:
		return o.Value, nil
	case *evaluator.List:
		return m.listToSlice(o, targetType)
	case *evaluator.FnPtr:
		// The Engine wraps these in a Closure handle; raw marshalling
		// passes the object through.
		return o, nil
	case *evaluator.Nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported type for conversion: %s", o.Type())
	}
}

func (m *Marshaller) sliceToList(v reflect.Value) (*evaluator.List, error) {
	elements := make([]evaluator.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return &evaluator.List{Elements: elements}, nil
}

func (m *Marshaller) listToSlice(l *evaluator.List, targetType reflect.Type) (interface{}, error) {
	elemType := reflect.TypeOf((*interface{})(nil)).Elem()
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(l.Elements))
	for _, el := range l.Elements {
		val, err := m.FromValue(el, elemType)
		if err != nil {
			return nil, err
		}
		if val == nil {
			slice = reflect.Append(slice, reflect.Zero(elemType))
			continue
		}
		rv := reflect.ValueOf(val)
		switch {
		case rv.Type().AssignableTo(elemType):
			slice = reflect.Append(slice, rv)
		case rv.Type().ConvertibleTo(elemType):
			slice = reflect.Append(slice, rv.Convert(elemType))
		default:
			return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), elemType)
		}
	}
	return slice.Interface(), nil
}

func bindableFunc(val interface{}) (reflect.Value, bool) {
	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Func {
		return v, true
	}
	return reflect.Value{}, false
}

// wrapFunc adapts a Go function into a builtin. Script arguments are
// converted to the function's parameter types per call; a final error
// return, if present, is surfaced as a script-level error.
func (eng *Engine) wrapFunc(name string, fn reflect.Value) *evaluator.Builtin {
	return &evaluator.Builtin{
		Name: name,
		Fn: func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
			result, err := eng.callGoFunc(fn, args)
			if err != nil {
				return &evaluator.Error{Message: fmt.Sprintf("%s: %s", name, err)}
			}
			return result
		},
	}
}

func (eng *Engine) callGoFunc(fn reflect.Value, args []evaluator.Object) (evaluator.Object, error) {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	isVariadic := fnType.IsVariadic()

	if isVariadic {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("expected %d arguments, got %d", numIn, len(args))
	}

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		var targetType reflect.Type
		if isVariadic && i >= numIn-1 {
			targetType = fnType.In(numIn - 1).Elem()
		} else {
			targetType = fnType.In(i)
		}
		val, err := eng.marshaller.FromValue(arg, targetType)
		if err != nil {
			return nil, fmt.Errorf("argument %d conversion failed: %w", i, err)
		}
		if val == nil {
			goArgs[i] = reflect.Zero(targetType)
		} else {
			rv := reflect.ValueOf(val)
			if !rv.Type().AssignableTo(targetType) && rv.Type().ConvertibleTo(targetType) {
				rv = rv.Convert(targetType)
			}
			goArgs[i] = rv
		}
	}

	results := fn.Call(goArgs)

	// Trailing error return
	if n := len(results); n > 0 {
		last := results[n-1]
		if last.Type() == reflect.TypeOf((*error)(nil)).Elem() {
			if !last.IsNil() {
				return nil, last.Interface().(error)
			}
			results = results[:n-1]
		}
	}

	switch len(results) {
	case 0:
		return evaluator.NIL, nil
	case 1:
		return eng.marshaller.ToValue(results[0].Interface())
	default:
		elements := make([]evaluator.Object, len(results))
		for i, res := range results {
			val, err := eng.marshaller.ToValue(res.Interface())
			if err != nil {
				return nil, err
			}
			elements[i] = val
		}
		return &evaluator.List{Elements: elements}, nil
	}
}
