package typedprefs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coerce converts a raw resource value to the Go type of t.
// The returned error is a TypeMismatchError carrying key.
func coerce(key string, raw any, t ValueType) (any, error) {
	mismatch := &TypeMismatchError{Key: key, Expected: t, Actual: describeRaw(raw)}

	switch t {
	case StringType:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case IntType:
		if n, ok := toInt64(raw); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n), nil
		}
	case BoolType:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.TrimSpace(v) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
	case ColorType:
		switch v := raw.(type) {
		case Color:
			return v, nil
		case string:
			if c, err := ParseColor(v); err == nil {
				return c, nil
			}
		default:
			if n, ok := toInt64(raw); ok && n >= 0 && n <= math.MaxUint32 {
				return Color(uint32(n)), nil
			}
		}
	case StringSetType:
		switch v := raw.(type) {
		case []string:
			return append([]string{}, v...), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, mismatch
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, mismatch
}

// toInt64 accepts every Go integer kind, integral floats and decimal or 0x strings.
func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func describeRaw(raw any) string {
	if raw == nil {
		return "nil"
	}
	if s, ok := raw.(string); ok {
		return fmt.Sprintf("string %q", s)
	}
	return fmt.Sprintf("%T", raw)
}
