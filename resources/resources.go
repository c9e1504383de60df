// Package resources provides ResourceResolver implementations for resource-backed
// preference defaults.
//
// Resources are addressed by reference ("@integer/number_of_rows") at declaration
// time and by numeric id at runtime. AssignIDs derives the ids deterministically
// from the resource names, so generated code and a runtime loader agree on them
// without sharing state.
package resources

import (
	"fmt"
	"strings"

	"github.com/CreativeUnicorns/typedprefs"
)

// Kind is a resource type as it appears in a reference.
type Kind string

// Supported resource kinds.
const (
	KindBool    Kind = "bool"
	KindColor   Kind = "color"
	KindInteger Kind = "integer"
	KindString  Kind = "string"
	KindArray   Kind = "array"
)

// kindIndex fixes the type byte of allocated ids. Changing it renumbers every id.
var kindIndex = map[Kind]int{
	KindBool:    1,
	KindColor:   2,
	KindInteger: 3,
	KindString:  4,
	KindArray:   5,
}

// Kinds lists the supported kinds in id order.
func Kinds() []Kind {
	return []Kind{KindBool, KindColor, KindInteger, KindString, KindArray}
}

// Known reports whether k is a supported kind.
func (k Kind) Known() bool {
	_, ok := kindIndex[k]
	return ok
}

// ValueType returns the preference value type a resource of kind k resolves to.
func (k Kind) ValueType() (typedprefs.ValueType, bool) {
	switch k {
	case KindBool:
		return typedprefs.BoolType, true
	case KindColor:
		return typedprefs.ColorType, true
	case KindInteger:
		return typedprefs.IntType, true
	case KindString:
		return typedprefs.StringType, true
	case KindArray:
		return typedprefs.StringSetType, true
	}
	return "", false
}

// Ref names one resource.
type Ref struct {
	Kind Kind
	Name string
}

func (r Ref) String() string {
	return "@" + string(r.Kind) + "/" + r.Name
}

// ParseRef parses "@kind/name". The kind is not checked against the supported set;
// callers decide what to do with unknown kinds.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") {
		return Ref{}, fmt.Errorf("%w: resource reference %q must start with '@'", typedprefs.ErrInvalidInput, s)
	}
	kind, name, ok := strings.Cut(s[1:], "/")
	if !ok || kind == "" || name == "" {
		return Ref{}, fmt.Errorf("%w: resource reference %q is not of the form @type/name", typedprefs.ErrInvalidInput, s)
	}
	return Ref{Kind: Kind(kind), Name: name}, nil
}
