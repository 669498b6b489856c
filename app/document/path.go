package document

import (
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/types"
)

// Get follows path through nested objects and returns the node at the end.
// A missing key or a non-object on the way is a schema error.
func (n *Node) Get(path ...string) (*Node, error) {
	cur := n
	for i, key := range path {
		obj, ok := cur.AsObject()
		if !ok {
			return nil, errorsmod.Wrapf(types.ErrSchema, "%s: expected object, got %s", joinPath(path[:i]), cur.Kind())
		}
		next, ok := obj.Get(key)
		if !ok {
			return nil, errorsmod.Wrapf(types.ErrSchema, "missing field %s", joinPath(path[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// Has reports whether path resolves to a value.
func (n *Node) Has(path ...string) bool {
	_, err := n.Get(path...)
	return err == nil
}

// GetObject returns the object at path.
func (n *Node) GetObject(path ...string) (*Object, error) {
	v, err := n.Get(path...)
	if err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrSchema, "%s: expected object, got %s", joinPath(path), v.Kind())
	}
	return obj, nil
}

// GetArray returns the elements of the array at path.
func (n *Node) GetArray(path ...string) ([]*Node, error) {
	v, err := n.Get(path...)
	if err != nil {
		return nil, err
	}
	items, ok := v.AsArray()
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrSchema, "%s: expected array, got %s", joinPath(path), v.Kind())
	}
	return items, nil
}

// GetString returns the string at path.
func (n *Node) GetString(path ...string) (string, error) {
	v, err := n.Get(path...)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", errorsmod.Wrapf(types.ErrSchema, "%s: expected string, got %s", joinPath(path), v.Kind())
	}
	return s, nil
}

// Field returns the value under key, failing if it is absent.
func (o *Object) Field(key string) (*Node, error) {
	return FromObject(o).Get(key)
}

// ObjectField returns the object under key.
func (o *Object) ObjectField(key string) (*Object, error) {
	return FromObject(o).GetObject(key)
}

// ArrayField returns the elements of the array under key.
func (o *Object) ArrayField(key string) ([]*Node, error) {
	return FromObject(o).GetArray(key)
}

// StringField returns the string under key.
func (o *Object) StringField(key string) (string, error) {
	return FromObject(o).GetString(key)
}

// Remove deletes key, failing if it is absent.
func (o *Object) Remove(key string) error {
	if !o.Delete(key) {
		return errorsmod.Wrapf(types.ErrSchema, "missing field %s", key)
	}
	return nil
}

// Objects returns the elements of items as objects, failing on the first
// element that is not an object. what names the collection in errors.
func Objects(items []*Node, what string) ([]*Object, error) {
	objs := make([]*Object, 0, len(items))
	for i, item := range items {
		obj, ok := item.AsObject()
		if !ok {
			return nil, errorsmod.Wrapf(types.ErrSchema, "%s[%d]: expected object, got %s", what, i, item.Kind())
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}
