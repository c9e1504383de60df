package resources

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CreativeUnicorns/typedprefs"
)

// Values holds raw resource values by kind and name. Scalars are kept as written
// (strings from XML; strings, ints or bools from YAML) and arrays as []string;
// conversion to the declared preference type happens at resolution time.
type Values struct {
	entries map[Kind]map[string]any
}

// NewValues creates an empty set.
func NewValues() *Values {
	return &Values{entries: make(map[Kind]map[string]any)}
}

// Set stores value under kind and name, replacing any earlier value.
func (v *Values) Set(kind Kind, name string, value any) {
	m, ok := v.entries[kind]
	if !ok {
		m = make(map[string]any)
		v.entries[kind] = m
	}
	m[name] = value
}

// Lookup returns the value of ref.
func (v *Values) Lookup(ref Ref) (any, bool) {
	val, ok := v.entries[ref.Kind][ref.Name]
	return val, ok
}

// Names returns the names of kind in sorted order.
func (v *Values) Names(kind Kind) []string {
	names := make([]string, 0, len(v.entries[kind]))
	for name := range v.entries[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of values of every kind.
func (v *Values) Len() int {
	n := 0
	for _, m := range v.entries {
		n += len(m)
	}
	return n
}

// Merge copies every value of other into v.
func (v *Values) Merge(other *Values) {
	for kind, m := range other.entries {
		for name, val := range m {
			v.Set(kind, name, val)
		}
	}
}

// xmlKinds maps resource file element names to kinds. Elements not listed are skipped.
var xmlKinds = map[string]Kind{
	"bool":          KindBool,
	"color":         KindColor,
	"integer":       KindInteger,
	"string":        KindString,
	"array":         KindArray,
	"string-array":  KindArray,
	"integer-array": KindArray,
}

type xmlResources struct {
	XMLName xml.Name  `xml:"resources"`
	Items   []xmlItem `xml:",any"`
}

type xmlItem struct {
	XMLName xml.Name
	Name    string   `xml:"name,attr"`
	Text    string   `xml:",chardata"`
	Items   []string `xml:"item"`
}

var unescaper = strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\n`, "\n", `\t`, "\t", `\\`, `\`)

func resourceText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return unescaper.Replace(s)
}

// ParseXML reads a <resources> document.
func ParseXML(r io.Reader) (*Values, error) {
	var doc xmlResources
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: resources xml: %v", typedprefs.ErrSerialization, err)
	}

	values := NewValues()
	for _, item := range doc.Items {
		kind, ok := xmlKinds[item.XMLName.Local]
		if !ok {
			continue
		}
		if item.Name == "" {
			return nil, fmt.Errorf("%w: resources xml: <%s> without a name", typedprefs.ErrInvalidInput, item.XMLName.Local)
		}
		if kind == KindArray {
			arr := make([]string, len(item.Items))
			for i, s := range item.Items {
				arr[i] = resourceText(s)
			}
			values.Set(kind, item.Name, arr)
			continue
		}
		values.Set(kind, item.Name, resourceText(item.Text))
	}
	return values, nil
}

// ParseYAML reads a document of the form
//
//	integer:
//	  number_of_rows: 10
//	array:
//	  request_types: [GET, POST]
func ParseYAML(r io.Reader) (*Values, error) {
	var doc map[string]map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: resources yaml: %v", typedprefs.ErrSerialization, err)
	}

	values := NewValues()
	for k, entries := range doc {
		kind := Kind(k)
		if !kind.Known() {
			return nil, fmt.Errorf("%w: resources yaml: unknown kind %q", typedprefs.ErrInvalidInput, k)
		}
		for name, raw := range entries {
			if kind != KindArray {
				values.Set(kind, name, raw)
				continue
			}
			list, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: resources yaml: %s/%s is not a list", typedprefs.ErrInvalidInput, kind, name)
			}
			arr := make([]string, len(list))
			for i, item := range list {
				arr[i] = fmt.Sprint(item)
			}
			values.Set(kind, name, arr)
		}
	}
	return values, nil
}
