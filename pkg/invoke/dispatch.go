package invoke

import (
	"fmt"
	"math"
	"reflect"

	"github.com/aretw0/fsmtrail/pkg/domain"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// dispatch converts the bound values to the function's parameter types and calls it.
func dispatch(t target, values []any) ([]any, error) {
	ft := t.fn.Type()
	in := make([]reflect.Value, len(values))
	for idx, v := range values {
		rv, err := coerce(v, ft.In(idx))
		if err != nil {
			name := fmt.Sprintf("arg%d", idx)
			if idx < len(t.sig.Params) {
				name = t.sig.Params[idx].Name
			}
			return nil, fmt.Errorf("%w: %s $%s: %v", domain.ErrArgumentType, t.name, name, err)
		}
		in[idx] = rv
	}

	var out []reflect.Value
	if ft.IsVariadic() {
		out = t.fn.CallSlice(in)
	} else {
		out = t.fn.Call(in)
	}

	results := make([]any, 0, len(out))
	for idx, rv := range out {
		if idx == len(out)-1 && ft.Out(idx) == errorType {
			if !rv.IsNil() {
				return results, rv.Interface().(error)
			}
			continue
		}
		results = append(results, rv.Interface())
	}
	return results, nil
}

func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		if err := checkLossless(rv, t); err != nil {
			return reflect.Value{}, err
		}
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", v, t)
}

// checkLossless rejects numeric conversions that would change the value.
func checkLossless(rv reflect.Value, t reflect.Type) error {
	target := reflect.New(t).Elem()
	switch {
	case rv.CanInt():
		n := rv.Int()
		switch {
		case target.CanInt() && target.OverflowInt(n),
			target.CanUint() && (n < 0 || target.OverflowUint(uint64(n))):
			return fmt.Errorf("%d overflows %s", n, t)
		}
	case rv.CanUint():
		n := rv.Uint()
		switch {
		case target.CanInt() && (n > math.MaxInt64 || target.OverflowInt(int64(n))),
			target.CanUint() && target.OverflowUint(n):
			return fmt.Errorf("%d overflows %s", n, t)
		}
	case rv.CanFloat():
		f := rv.Float()
		if target.CanFloat() {
			if target.OverflowFloat(f) {
				return fmt.Errorf("%g overflows %s", f, t)
			}
			return nil
		}
		if f != math.Trunc(f) || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%g is not a whole number for %s", f, t)
		}
		switch {
		case target.CanInt() && (f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f))),
			target.CanUint() && (f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f))):
			return fmt.Errorf("%g overflows %s", f, t)
		}
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
