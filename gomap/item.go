package gomap

import (
	"fmt"

	"github.com/confkit/confkit/ir"
)

// Item is a record that knows how to load itself from and store itself
// into an object node.
type Item interface {
	LoadConfig(obj *ir.Node) error
	StoreConfig(obj *ir.Node) error
}

// LoadRequiredItem loads the object member name of obj into item.
func LoadRequiredItem(item Item, name string, obj *ir.Node) error {
	member, err := objectMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: required member %q missing at %s", ir.ErrValidation, name, obj.Path())
	}
	return item.LoadConfig(member)
}

// LoadOptionalItem is LoadRequiredItem except a missing member succeeds
// with *loaded set to false.
func LoadOptionalItem(item Item, name string, obj *ir.Node, loaded *bool) error {
	if loaded != nil {
		*loaded = false
	}
	member, err := objectMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}
	if err := item.LoadConfig(member); err != nil {
		return err
	}
	if loaded != nil {
		*loaded = true
	}
	return nil
}

// LoadRequiredList loads the object member name of obj into a slice,
// constructing one element per member in insertion order.
func LoadRequiredList[T any](dst *[]T, name string, obj *ir.Node, mk func(name string, member *ir.Node) (T, error)) error {
	member, err := objectMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: required container %q missing at %s", ir.ErrValidation, name, obj.Path())
	}
	return loadList(dst, member, mk)
}

// LoadOptionalList is LoadRequiredList except a missing member succeeds
// with *loaded set to false.
func LoadOptionalList[T any](dst *[]T, name string, obj *ir.Node, mk func(name string, member *ir.Node) (T, error), loaded *bool) error {
	if loaded != nil {
		*loaded = false
	}
	member, err := objectMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}
	if err := loadList(dst, member, mk); err != nil {
		return err
	}
	if loaded != nil {
		*loaded = true
	}
	return nil
}

// LoadRequiredMap loads the object member name of obj into a map keyed
// by member name.
func LoadRequiredMap[T any](dst *map[string]T, name string, obj *ir.Node, mk func(name string, member *ir.Node) (T, error)) error {
	member, err := objectMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: required container %q missing at %s", ir.ErrValidation, name, obj.Path())
	}
	return loadMap(dst, member, mk)
}

// LoadOptionalMap is LoadRequiredMap except a missing member succeeds
// with *loaded set to false.
func LoadOptionalMap[T any](dst *map[string]T, name string, obj *ir.Node, mk func(name string, member *ir.Node) (T, error), loaded *bool) error {
	if loaded != nil {
		*loaded = false
	}
	member, err := objectMember(name, obj)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}
	if err := loadMap(dst, member, mk); err != nil {
		return err
	}
	if loaded != nil {
		*loaded = true
	}
	return nil
}

func loadList[T any](dst *[]T, container *ir.Node, mk func(name string, member *ir.Node) (T, error)) error {
	res := make([]T, 0, container.Len())
	for i := 0; i < container.Len(); i++ {
		name, member := container.MemberAt(i)
		v, err := mk(name, member)
		if err != nil {
			return fmt.Errorf("%w: element %q at %s: %v", ir.ErrValidation, name, container.Path(), err)
		}
		res = append(res, v)
	}
	*dst = res
	return nil
}

func loadMap[T any](dst *map[string]T, container *ir.Node, mk func(name string, member *ir.Node) (T, error)) error {
	res := make(map[string]T, container.Len())
	for i := 0; i < container.Len(); i++ {
		name, member := container.MemberAt(i)
		v, err := mk(name, member)
		if err != nil {
			return fmt.Errorf("%w: element %q at %s: %v", ir.ErrValidation, name, container.Path(), err)
		}
		res[name] = v
	}
	*dst = res
	return nil
}

func objectMember(name string, obj *ir.Node) (*ir.Node, error) {
	if obj == nil || obj.Kind != ir.ObjectKind {
		return nil, fmt.Errorf("%w: loading %q from a non-object", ir.ErrValidation, name)
	}
	member := obj.Member(name)
	if member == nil {
		return nil, nil
	}
	if member.Kind != ir.ObjectKind {
		return nil, fmt.Errorf("%w: member %q at %s is a %s, not an object",
			ir.ErrValidation, name, obj.Path(), member.Kind)
	}
	return member, nil
}
