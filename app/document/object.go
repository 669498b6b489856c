package document

// Object is a JSON object that remembers the order in which keys were added.
type Object struct {
	keys   []string
	values map[string]*Node
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]*Node)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (*Node, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (o *Object) Set(key string, v *Node) {
	if v == nil {
		v = Null()
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Range calls fn for every entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v *Node) bool) {
	for _, key := range o.keys {
		if !fn(key, o.values[key]) {
			return
		}
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]*Node, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v.Clone()
	}
	return c
}
