// Package document holds the in-memory form of a genesis file: a tagged tree
// of JSON values that keeps object key order and the exact text of numbers.
package document

import "strconv"

// Kind identifies the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is a single JSON value. Numbers keep their source literal so that
// amounts are never reinterpreted as binary floating point.
type Node struct {
	kind  Kind
	b     bool
	text  string
	items []*Node
	obj   *Object
}

// Null returns a JSON null.
func Null() *Node {
	return &Node{kind: KindNull}
}

// Bool returns a JSON boolean.
func Bool(v bool) *Node {
	return &Node{kind: KindBool, b: v}
}

// Number returns a JSON number with the given literal text.
// The literal is written back verbatim; callers must pass valid JSON number text.
func Number(literal string) *Node {
	return &Node{kind: KindNumber, text: literal}
}

// Uint returns a JSON number for an unsigned integer.
func Uint(v uint64) *Node {
	return Number(strconv.FormatUint(v, 10))
}

// String returns a JSON string.
func String(s string) *Node {
	return &Node{kind: KindString, text: s}
}

// Array returns a JSON array holding items.
func Array(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{kind: KindArray, items: items}
}

// Strings returns a JSON array of strings.
func Strings(values ...string) *Node {
	items := make([]*Node, 0, len(values))
	for _, v := range values {
		items = append(items, String(v))
	}
	return Array(items...)
}

// FromObject wraps an object into a node.
func FromObject(o *Object) *Node {
	if o == nil {
		o = NewObject()
	}
	return &Node{kind: KindObject, obj: o}
}

// Kind returns the variant of the node. A nil node is null.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// AsBool returns the boolean value.
func (n *Node) AsBool() (bool, bool) {
	if n.Kind() != KindBool {
		return false, false
	}
	return n.b, true
}

// AsNumber returns the number literal.
func (n *Node) AsNumber() (string, bool) {
	if n.Kind() != KindNumber {
		return "", false
	}
	return n.text, true
}

// AsString returns the string value.
func (n *Node) AsString() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	return n.text, true
}

// AsArray returns the elements of an array. The returned slice is shared
// with the node, so elements may be modified in place.
func (n *Node) AsArray() ([]*Node, bool) {
	if n.Kind() != KindArray {
		return nil, false
	}
	return n.items, true
}

// AsObject returns the object held by the node.
func (n *Node) AsObject() (*Object, bool) {
	if n.Kind() != KindObject {
		return nil, false
	}
	return n.obj, true
}

// Append adds elements to an array node.
func (n *Node) Append(items ...*Node) {
	n.kind = KindArray
	n.items = append(n.items, items...)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return Null()
	}
	switch n.kind {
	case KindArray:
		items := make([]*Node, len(n.items))
		for i, item := range n.items {
			items[i] = item.Clone()
		}
		return Array(items...)
	case KindObject:
		return FromObject(n.obj.Clone())
	default:
		c := *n
		return &c
	}
}

// Walk calls fn for the node and every node below it, depth first.
// Object keys are not visited.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch n.kind {
	case KindArray:
		for _, item := range n.items {
			item.Walk(fn)
		}
	case KindObject:
		for _, key := range n.obj.keys {
			n.obj.values[key].Walk(fn)
		}
	}
}
