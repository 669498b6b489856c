package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/types"
)

// Decode reads a single JSON document from r.
func Decode(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrSchema, "malformed JSON document: %s", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errorsmod.Wrap(types.ErrSchema, "malformed JSON document: trailing data after top-level value")
	}
	return root, nil
}

// Unmarshal decodes a JSON document held in memory.
func Unmarshal(bz []byte) (*Node, error) {
	return Decode(bytes.NewReader(bz))
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, errors.New("unexpected delimiter " + t.String())
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, errors.New("unexpected token")
	}
}

func decodeObject(dec *json.Decoder) (*Node, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return FromObject(obj), nil
}

func decodeArray(dec *json.Decoder) (*Node, error) {
	items := make([]*Node, 0)
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return Array(items...), nil
}

// Encode writes n to w. An empty indent produces compact output.
func Encode(w io.Writer, n *Node, indent string) error {
	bw := bufio.NewWriter(w)
	e := newEncoder(bw, indent)
	e.value(n, 0)
	if e.err != nil {
		return e.err
	}
	if indent != "" {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Marshal returns the compact encoding of n.
func Marshal(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, n, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encoder walks the tree itself so that key order is kept, and leaves string
// escaping to encoding/json.
type encoder struct {
	w      *bufio.Writer
	indent string

	scratch bytes.Buffer
	str     *json.Encoder
	err     error
}

func newEncoder(w *bufio.Writer, indent string) *encoder {
	e := &encoder{w: w, indent: indent}
	e.str = json.NewEncoder(&e.scratch)
	e.str.SetEscapeHTML(false)
	return e
}

// writeString writes s as a JSON string. HTML characters are left alone.
func (e *encoder) writeString(s string) {
	e.scratch.Reset()
	if err := e.str.Encode(s); err != nil {
		if e.err == nil {
			e.err = err
		}
		return
	}
	e.w.Write(bytes.TrimSuffix(e.scratch.Bytes(), []byte{'\n'}))
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.w.WriteByte('\n')
	e.w.WriteString(strings.Repeat(e.indent, depth))
}

func (e *encoder) value(n *Node, depth int) {
	switch n.Kind() {
	case KindNull:
		e.w.WriteString("null")
	case KindBool:
		if n.b {
			e.w.WriteString("true")
		} else {
			e.w.WriteString("false")
		}
	case KindNumber:
		e.w.WriteString(n.text)
	case KindString:
		e.writeString(n.text)
	case KindArray:
		if len(n.items) == 0 {
			e.w.WriteString("[]")
			return
		}
		e.w.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				e.w.WriteByte(',')
			}
			e.newline(depth + 1)
			e.value(item, depth+1)
		}
		e.newline(depth)
		e.w.WriteByte(']')
	case KindObject:
		if n.obj.Len() == 0 {
			e.w.WriteString("{}")
			return
		}
		e.w.WriteByte('{')
		for i, key := range n.obj.keys {
			if i > 0 {
				e.w.WriteByte(',')
			}
			e.newline(depth + 1)
			e.writeString(key)
			e.w.WriteByte(':')
			if e.indent != "" {
				e.w.WriteByte(' ')
			}
			e.value(n.obj.values[key], depth+1)
		}
		e.newline(depth)
		e.w.WriteByte('}')
	}
}
