package rowquery

import (
	"bytes"
	"errors"

	"github.com/iancoleman/orderedmap"
)

var ErrNotObject = errors.New("row data must be a JSON object")

// Payload is a row's data: an insertion-ordered mapping of column name to value.
// The zero value is an empty payload.
type Payload struct {
	m *orderedmap.OrderedMap
}

func NewPayload() Payload {
	return Payload{m: orderedmap.New()}
}

// ParsePayload decodes a JSON object. null and empty input give an empty payload.
func ParsePayload(raw []byte) (Payload, error) {
	p := NewPayload()
	if err := p.UnmarshalJSON(raw); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// MustParsePayload is ParsePayload for literals in tests and fixtures.
func MustParsePayload(raw string) Payload {
	p, err := ParsePayload([]byte(raw))
	if err != nil {
		panic(err)
	}
	return p
}

func (p Payload) Get(key string) (Value, bool) {
	if p.m == nil {
		return Value{}, false
	}
	v, ok := p.m.Get(key)
	if !ok {
		return Value{}, false
	}
	return ValueOf(v), true
}

func (p Payload) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

func (p Payload) Keys() []string {
	if p.m == nil {
		return nil
	}
	return p.m.Keys()
}

func (p Payload) Len() int {
	return len(p.Keys())
}

func (p *Payload) Set(key string, v any) {
	if p.m == nil {
		p.m = orderedmap.New()
	}
	if val, ok := v.(Value); ok {
		v = val.Interface()
	}
	p.m.Set(key, v)
}

// Delete removes key and reports whether it was present.
func (p Payload) Delete(key string) bool {
	if !p.Has(key) {
		return false
	}
	p.m.Delete(key)
	return true
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if p.m == nil {
		return []byte("{}"), nil
	}
	return p.m.MarshalJSON()
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	p.m = orderedmap.New()
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return ErrNotObject
	}
	return p.m.UnmarshalJSON(trimmed)
}
