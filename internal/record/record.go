package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

// Kind tags the JSON type of a field value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is one field value: its JSON kind, the raw encoded bytes, and a
// decoded form for scalars. Nested structures (including string-encoded JSON
// such as tags or description) are kept as raw bytes and never re-decoded.
type Value struct {
	kind Kind
	raw  []byte
	str  string
	num  float64
	b    bool
}

func (v Value) Kind() Kind { return v.kind }

// Raw returns the value's original JSON encoding.
func (v Value) Raw() []byte { return v.raw }

// Field is a single key/value pair of a record.
type Field struct {
	Key   string
	Value Value
}

// Record is one item of a dataset: a flat key-value mapping with no fixed
// schema. Field order follows the source document and is preserved on
// re-serialization.
type Record struct {
	fields []Field
	index  map[string]int
}

// Get returns the value for key and whether the key is present.
func (r Record) Get(key string) (Value, bool) {
	i, ok := r.index[key]
	if !ok {
		return Value{}, false
	}
	return r.fields[i].Value, true
}

// Fields returns the record's fields in source order.
func (r Record) Fields() []Field { return r.fields }

func (r Record) Len() int { return len(r.fields) }

// MarshalJSON writes the record as a JSON object in source field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.Value.raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func fromObject(obj *fastjson.Object) (Record, error) {
	r := Record{index: make(map[string]int)}
	var convErr error

	obj.Visit(func(key []byte, v *fastjson.Value) {
		if convErr != nil {
			return
		}
		val, err := fromValue(v)
		if err != nil {
			convErr = fmt.Errorf("field %q: %w", string(key), err)
			return
		}
		k := string(key)
		if _, dup := r.index[k]; dup {
			// Duplicate keys are invalid per the source contract; last wins,
			// matching what a map-based decoder would do.
			r.fields[r.index[k]].Value = val
			return
		}
		r.index[k] = len(r.fields)
		r.fields = append(r.fields, Field{Key: k, Value: val})
	})

	if convErr != nil {
		return Record{}, convErr
	}
	return r, nil
}

func fromValue(v *fastjson.Value) (Value, error) {
	// MarshalTo copies out of the parser's buffer, so values stay valid
	// after the parser is reused.
	raw := v.MarshalTo(nil)

	switch v.Type() {
	case fastjson.TypeString:
		sb, err := v.StringBytes()
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindString, raw: raw, str: string(sb)}, nil
	case fastjson.TypeNumber:
		n, err := v.Float64()
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindNumber, raw: raw, num: n}, nil
	case fastjson.TypeTrue:
		return Value{kind: KindBool, raw: raw, b: true}, nil
	case fastjson.TypeFalse:
		return Value{kind: KindBool, raw: raw, b: false}, nil
	case fastjson.TypeNull:
		return Value{kind: KindNull, raw: raw}, nil
	case fastjson.TypeArray:
		return Value{kind: KindArray, raw: raw}, nil
	case fastjson.TypeObject:
		return Value{kind: KindObject, raw: raw}, nil
	}
	return Value{}, fmt.Errorf("unsupported JSON type %s", v.Type())
}

// Parse decodes a single JSON object into a record.
func Parse(data []byte) (Record, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	return fromObject(obj)
}

// wrapperKeys are tried in order when a dataset document is an object rather
// than a bare array. Production wraps lists as {"url": ..., "posts": [...]}.
var wrapperKeys = []string{"posts", "links", "timeline", "data"}

// ParseList decodes a dataset document into records. A top-level array is the
// record list; a top-level object is unwrapped through the first known wrapper
// key holding an array. Any other shape yields an empty list.
func ParseList(data []byte) ([]Record, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse dataset document: %w", err)
	}

	var items []*fastjson.Value
	switch v.Type() {
	case fastjson.TypeArray:
		items, _ = v.Array()
	case fastjson.TypeObject:
		for _, key := range wrapperKeys {
			inner := v.Get(key)
			if inner != nil && inner.Type() == fastjson.TypeArray {
				items, _ = inner.Array()
				break
			}
		}
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		r, err := fromObject(obj)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}
