// validation.go
package typedprefs

import (
	"fmt"
	"slices"
)

func checkType(t ValueType, value any) error {
	ok := false
	switch t {
	case StringType:
		_, ok = value.(string)
	case IntType:
		_, ok = value.(int32)
	case BoolType:
		_, ok = value.(bool)
	case ColorType:
		_, ok = value.(Color)
	case StringSetType:
		_, ok = value.([]string)
	default:
		return fmt.Errorf("%w: unsupported type %q", ErrInvalidType, t)
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", t, value)
	}
	return nil
}

// validate checks value against the declared type and domain before anything is written.
func (d *Descriptor) validate(b binding, value any) error {
	if err := checkType(d.valueType, value); err != nil {
		return &ValidationError{Key: d.key, Value: value, Reason: err.Error()}
	}

	if !d.domain.declared() {
		return nil
	}

	domain, err := d.domainValues(b)
	if err != nil {
		return err
	}
	return checkDomain(d.key, domain, value)
}

func checkDomain(key string, domain []string, value any) error {
	switch v := value.(type) {
	case string:
		if !slices.Contains(domain, v) {
			return &ValidationError{Key: key, Value: v, Reason: fmt.Sprintf("not one of %v", domain)}
		}
	case []string:
		seen := make(map[string]bool, len(v))
		for _, item := range v {
			if !slices.Contains(domain, item) {
				return &ValidationError{Key: key, Value: v, Reason: fmt.Sprintf("%q is not one of %v", item, domain)}
			}
			if seen[item] {
				return &ValidationError{Key: key, Value: v, Reason: fmt.Sprintf("%q appears more than once", item)}
			}
			seen[item] = true
		}
	}
	return nil
}
