package gomap

import (
	"cmp"
	"fmt"
)

// Range returns a validator requiring lo <= v <= hi.
func Range[T cmp.Ordered](lo, hi T) Validator[T] {
	return func(v T) error {
		if v < lo || v > hi {
			return fmt.Errorf("value %v outside range [%v, %v]", v, lo, hi)
		}
		return nil
	}
}

// OneOf returns a validator requiring v to be one of the given values.
func OneOf[T comparable](allowed ...T) Validator[T] {
	return func(v T) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("value %v not among %v", v, allowed)
	}
}

// NonEmpty rejects the empty string.
func NonEmpty() Validator[string] {
	return func(v string) error {
		if v == "" {
			return fmt.Errorf("value must not be empty")
		}
		return nil
	}
}
