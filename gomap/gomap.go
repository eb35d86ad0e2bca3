package gomap

import (
	"fmt"
	"math"

	"github.com/confkit/confkit/ir"
)

// Validator checks a loaded value.
type Validator[T any] func(T) error

// Loadable enumerates the scalar target types of the typed loaders.
type Loadable interface {
	~bool | ~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// LoadRequired loads the value member name of obj into dst.  A missing
// member, a non-value member, a payload of the wrong type, or a failing
// validator is a validation error.
func LoadRequired[T Loadable](dst *T, name string, obj *ir.Node, vs ...Validator[T]) error {
	member, err := valueMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: required member %q missing at %s", ir.ErrValidation, name, obj.Path())
	}
	return loadScalar(dst, name, member, vs)
}

// LoadOptional is LoadRequired except a missing member succeeds, leaves
// dst unchanged, and sets *loaded to false.
func LoadOptional[T Loadable](dst *T, name string, obj *ir.Node, loaded *bool, vs ...Validator[T]) error {
	if loaded != nil {
		*loaded = false
	}
	member, err := valueMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}
	if err := loadScalar(dst, name, member, vs); err != nil {
		return err
	}
	if loaded != nil {
		*loaded = true
	}
	return nil
}

func valueMember(name string, obj *ir.Node) (*ir.Node, error) {
	if obj == nil || obj.Kind != ir.ObjectKind {
		return nil, fmt.Errorf("%w: loading %q from a non-object", ir.ErrValidation, name)
	}
	member := obj.Member(name)
	if member == nil {
		return nil, nil
	}
	if member.Kind != ir.ValueKind {
		return nil, fmt.Errorf("%w: member %q at %s is a %s, not a value",
			ir.ErrValidation, name, obj.Path(), member.Kind)
	}
	return member, nil
}

func loadScalar[T Loadable](dst *T, name string, member *ir.Node, vs []Validator[T]) error {
	v, err := convert[T](member.Value)
	if err != nil {
		return fmt.Errorf("%w: member %q at %s: %v", ir.ErrValidation, name, member.Path(), err)
	}
	for _, validate := range vs {
		if err := validate(v); err != nil {
			return fmt.Errorf("%w: member %q at %s: %v", ir.ErrValidation, name, member.Path(), err)
		}
	}
	*dst = v
	return nil
}

// convert maps a decoded payload onto the target scalar type, checking
// range and integrality for numbers.
func convert[T Loadable](payload any) (T, error) {
	var zero T
	switch any(zero).(type) {
	case bool:
		b, ok := payload.(bool)
		if !ok {
			return zero, fmt.Errorf("expected bool, got %T", payload)
		}
		return any(b).(T), nil
	case string:
		s, ok := payload.(string)
		if !ok {
			return zero, fmt.Errorf("expected string, got %T", payload)
		}
		return any(s).(T), nil
	case float32, float64:
		f, ok := toFloat(payload)
		if !ok {
			return zero, fmt.Errorf("expected number, got %T", payload)
		}
		return fromFloat[T](f)
	default:
		i, ok := toInt(payload)
		if !ok {
			return zero, fmt.Errorf("expected integer, got %T", payload)
		}
		return fromInt[T](i)
	}
}

func toFloat(payload any) (float64, bool) {
	switch x := payload.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func toInt(payload any) (int64, bool) {
	switch x := payload.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		i := int64(x)
		if float64(i) != x {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func fromFloat[T Loadable](f float64) (T, error) {
	var zero T
	switch any(zero).(type) {
	case float32:
		if f != 0 && (math.Abs(f) > math.MaxFloat32) {
			return zero, fmt.Errorf("value %g overflows float32", f)
		}
		return any(float32(f)).(T), nil
	default:
		return any(f).(T), nil
	}
}

func fromInt[T Loadable](i int64) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int:
		if i < math.MinInt || i > math.MaxInt {
			return zero, fmt.Errorf("value %d overflows int", i)
		}
		return any(int(i)).(T), nil
	case int8:
		if i < math.MinInt8 || i > math.MaxInt8 {
			return zero, fmt.Errorf("value %d overflows int8", i)
		}
		return any(int8(i)).(T), nil
	case int16:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return zero, fmt.Errorf("value %d overflows int16", i)
		}
		return any(int16(i)).(T), nil
	case int32:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return zero, fmt.Errorf("value %d overflows int32", i)
		}
		return any(int32(i)).(T), nil
	case int64:
		return any(i).(T), nil
	case uint:
		if i < 0 {
			return zero, fmt.Errorf("value %d is negative", i)
		}
		return any(uint(i)).(T), nil
	case uint8:
		if i < 0 || i > math.MaxUint8 {
			return zero, fmt.Errorf("value %d overflows uint8", i)
		}
		return any(uint8(i)).(T), nil
	case uint16:
		if i < 0 || i > math.MaxUint16 {
			return zero, fmt.Errorf("value %d overflows uint16", i)
		}
		return any(uint16(i)).(T), nil
	case uint32:
		if i < 0 || i > math.MaxUint32 {
			return zero, fmt.Errorf("value %d overflows uint32", i)
		}
		return any(uint32(i)).(T), nil
	case uint64:
		if i < 0 {
			return zero, fmt.Errorf("value %d is negative", i)
		}
		return any(uint64(i)).(T), nil
	default:
		return zero, fmt.Errorf("unsupported integer target %T", zero)
	}
}
