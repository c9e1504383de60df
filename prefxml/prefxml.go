// Package prefxml extracts preference entries from preference screen XML.
//
// Every element carrying a key attribute contributes an entry, whatever its
// element name or namespace. The value type is inferred from defaultValue:
//
//	(absent or empty)  key-only entry, no value type
//	true, false        bool literal
//	decimal integer    int literal
//	@bool/name         bool resource
//	@color/name        color resource
//	@integer/name      int resource
//	@string/name       string resource
//	@array/name        string set resource
//	anything else      string literal
//
// Entries whose default references any other resource type are dropped.
package prefxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/resources"
)

// Entry is one preference found in a screen.
type Entry struct {
	Key     string
	Element string

	// Type is empty for key-only entries.
	Type    typedprefs.ValueType
	Source  typedprefs.DefaultSource
	Literal any
	Ref     resources.Ref

	// Labels and Values are the entries and entryValues array references of
	// list preferences.
	Labels *resources.Ref
	Values *resources.Ref
}

// KeyOnly reports whether the entry carries no value type.
func (e Entry) KeyOnly() bool {
	return e.Type == ""
}

// Refs returns every resource the entry references.
func (e Entry) Refs() []resources.Ref {
	var refs []resources.Ref
	if e.Source == typedprefs.DefaultResource {
		refs = append(refs, e.Ref)
	}
	if e.Labels != nil {
		refs = append(refs, *e.Labels)
	}
	if e.Values != nil {
		refs = append(refs, *e.Values)
	}
	return refs
}

// Parse reads one screen and returns its entries in document order.
func Parse(r io.Reader) ([]Entry, error) {
	dec := xml.NewDecoder(r)

	var entries []Entry
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: preference xml: %v", typedprefs.ErrSerialization, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if entry, ok := entryFrom(start); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ParseFile reads the screen at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("prefxml: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("prefxml: %s: %w", path, err)
	}
	return entries, nil
}

// ParseFS reads every file matching the glob patterns and merges the result.
func ParseFS(fsys fs.FS, patterns ...string) ([]Entry, error) {
	var lists [][]Entry
	for _, pattern := range patterns {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("prefxml: %w", err)
		}
		sort.Strings(matches)

		for _, name := range matches {
			f, err := fsys.Open(name)
			if err != nil {
				return nil, fmt.Errorf("prefxml: %w", err)
			}
			entries, err := Parse(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("prefxml: %s: %w", name, err)
			}
			lists = append(lists, entries)
		}
	}
	return Merge(lists...), nil
}

// Merge returns the entries of every list, distinct by key and sorted by key.
// The first occurrence of a key wins.
func Merge(lists ...[]Entry) []Entry {
	seen := make(map[string]bool)
	var out []Entry
	for _, list := range lists {
		for _, e := range list {
			if seen[e.Key] {
				continue
			}
			seen[e.Key] = true
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func entryFrom(start xml.StartElement) (Entry, bool) {
	var key, def, labels, values string
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "key":
			key = attr.Value
		case "defaultValue":
			def = attr.Value
		case "entries":
			labels = attr.Value
		case "entryValues":
			values = attr.Value
		}
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, false
	}

	entry := Entry{Key: key, Element: start.Name.Local}
	switch {
	case def == "":
		return entry, true
	case def == "true" || def == "false":
		entry.Type = typedprefs.BoolType
		entry.Source = typedprefs.DefaultLiteral
		entry.Literal = def == "true"
		return entry, true
	}

	if n, err := strconv.ParseInt(def, 10, 32); err == nil {
		entry.Type = typedprefs.IntType
		entry.Source = typedprefs.DefaultLiteral
		entry.Literal = int32(n)
		return entry, true
	}

	if strings.HasPrefix(def, "@") {
		ref, err := resources.ParseRef(def)
		if err != nil {
			return Entry{}, false
		}
		t, ok := ref.Kind.ValueType()
		if !ok {
			return Entry{}, false
		}
		entry.Type = t
		entry.Source = typedprefs.DefaultResource
		entry.Ref = ref
	} else {
		entry.Type = typedprefs.StringType
		entry.Source = typedprefs.DefaultLiteral
		entry.Literal = def
	}

	if entry.Type == typedprefs.StringType || entry.Type == typedprefs.StringSetType {
		entry.Labels = arrayRef(labels)
		entry.Values = arrayRef(values)
	}
	return entry, true
}

// arrayRef returns the reference when s names an array resource.
func arrayRef(s string) *resources.Ref {
	ref, err := resources.ParseRef(s)
	if err != nil || ref.Kind != resources.KindArray {
		return nil
	}
	return &ref
}
