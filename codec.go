package typedprefs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeValue serializes a stored value to JSON. Colors encode as "#AARRGGBB".
func EncodeValue(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// DecodeValue parses JSON produced by EncodeValue back into the Go type for t.
// JSON null is rejected rather than decoded to the zero value.
func DecodeValue(t ValueType, data []byte) (any, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: decode %s: null value", ErrSerialization, t)
	}

	var (
		out any
		err error
	)

	switch t {
	case StringType:
		var s string
		err = json.Unmarshal(data, &s)
		out = s
	case IntType:
		var n int32
		err = json.Unmarshal(data, &n)
		out = n
	case BoolType:
		var b bool
		err = json.Unmarshal(data, &b)
		out = b
	case ColorType:
		var c Color
		err = json.Unmarshal(data, &c)
		out = c
	case StringSetType:
		var set []string
		err = json.Unmarshal(data, &set)
		out = set
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrSerialization, t, err)
	}
	return out, nil
}

// MarshalPreference serializes a whole record, as used by the cache and the Redis backend.
func MarshalPreference(p *Preference) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// UnmarshalPreference parses a record produced by MarshalPreference, decoding Value
// according to the recorded Type.
func UnmarshalPreference(data []byte) (*Preference, error) {
	var raw struct {
		Preference
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	value, err := DecodeValue(raw.Type, raw.Value)
	if err != nil {
		return nil, err
	}

	pref := raw.Preference
	pref.Value = value
	return &pref, nil
}
