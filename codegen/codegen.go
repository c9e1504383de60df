// Package codegen renders typed preference handles from parsed preference screens.
//
// The output declares one constant per referenced resource id, one constant per
// key-only entry, a struct with a *typedprefs.Pref[T] field per typed entry, and a
// constructor that declares the entries on a registry in key order. Because the
// fields are Go identifiers, a mistyped preference name fails to compile.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/prefxml"
	"github.com/CreativeUnicorns/typedprefs/resources"
)

// Config controls the generated file.
type Config struct {
	// Package is the package clause of the generated file.
	Package string
	// TypeName names the handle struct. Defaults to "P".
	TypeName string
	// Generator is named in the "Code generated" header. Defaults to "prefgen".
	Generator string
}

type resourceConst struct {
	Name string
	Ref  string
	ID   string
}

type keyConst struct {
	Name string
	Key  string
}

type field struct {
	Name    string
	Key     string
	GoType  string
	Default string
	Options []string
}

type fileData struct {
	Generator string
	Package   string
	TypeName  string
	Resources []resourceConst
	Keys      []keyConst
	Fields    []field
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by {{.Generator}}. DO NOT EDIT.

package {{.Package}}

import "github.com/CreativeUnicorns/typedprefs"
{{if .Resources}}
// Resource ids referenced by the preference entries.
const (
{{- range .Resources}}
	{{.Name}} = {{.ID}} // {{.Ref}}
{{- end}}
)
{{end}}
{{- if .Keys}}
// Keys of entries that carry no value.
const (
{{- range .Keys}}
	{{.Name}} = {{printf "%q" .Key}}
{{- end}}
)
{{end}}
// {{.TypeName}} holds the typed preference handles.
type {{.TypeName}} struct {
{{- range .Fields}}
	{{.Name}} *typedprefs.Pref[{{.GoType}}]
{{- end}}
}

// New{{.TypeName}} declares every preference on r. It panics if r already holds
// one of the keys or has been initialized.
func New{{.TypeName}}(r *typedprefs.Registry) *{{.TypeName}} {
	return &{{.TypeName}}{
{{- range .Fields}}
		{{.Name}}: typedprefs.MustDefine(r, {{printf "%q" .Key}}, {{.Default}}{{range .Options}}, {{.}}{{end}}),
{{- end}}
	}
}
`))

// Generate renders the Go source for entries. ids must hold every resource the
// entries reference.
func Generate(cfg Config, entries []prefxml.Entry, ids resources.IDs) ([]byte, error) {
	if cfg.Package == "" {
		return nil, fmt.Errorf("%w: codegen: package name is required", typedprefs.ErrInvalidInput)
	}
	if cfg.TypeName == "" {
		cfg.TypeName = "P"
	}
	if cfg.Generator == "" {
		cfg.Generator = "prefgen"
	}

	data := fileData{
		Generator: cfg.Generator,
		Package:   cfg.Package,
		TypeName:  cfg.TypeName,
	}

	names := make(map[string]string)
	claim := func(name, key string) error {
		if other, ok := names[name]; ok {
			return fmt.Errorf("%w: codegen: keys %q and %q both map to %s", typedprefs.ErrDuplicateKey, other, key, name)
		}
		names[name] = key
		return nil
	}

	used := make(map[resources.Ref]bool)
	resConst := func(ref resources.Ref) (string, error) {
		if _, ok := ids.Lookup(ref); !ok {
			return "", fmt.Errorf("%w: codegen: %s", typedprefs.ErrResourceNotFound, ref)
		}
		used[ref] = true
		return resourceConstName(ref), nil
	}

	for _, e := range entries {
		name := typedprefs.AccessorName(e.Key)
		if name == "" {
			return nil, fmt.Errorf("%w: codegen: %q", typedprefs.ErrInvalidKey, e.Key)
		}

		if e.KeyOnly() {
			constName := "Key" + name
			if err := claim(constName, e.Key); err != nil {
				return nil, err
			}
			data.Keys = append(data.Keys, keyConst{Name: constName, Key: e.Key})
			continue
		}

		if err := claim(name, e.Key); err != nil {
			return nil, err
		}

		goType, err := goTypeOf(e.Type)
		if err != nil {
			return nil, err
		}
		f := field{Name: name, Key: e.Key, GoType: goType}

		switch e.Source {
		case typedprefs.DefaultResource:
			c, err := resConst(e.Ref)
			if err != nil {
				return nil, err
			}
			f.Default = fmt.Sprintf("typedprefs.FromResource[%s](%s)", goType, c)
		case typedprefs.DefaultLiteral:
			lit, err := literal(e.Literal)
			if err != nil {
				return nil, fmt.Errorf("codegen: %q: %w", e.Key, err)
			}
			f.Default = fmt.Sprintf("typedprefs.Literal[%s](%s)", goType, lit)
		default:
			f.Default = fmt.Sprintf("typedprefs.NoDefault[%s]()", goType)
		}

		if e.Values != nil {
			c, err := resConst(*e.Values)
			if err != nil {
				return nil, err
			}
			f.Options = append(f.Options, fmt.Sprintf("typedprefs.WithDomainResource(%s)", c))
		}
		if e.Labels != nil {
			c, err := resConst(*e.Labels)
			if err != nil {
				return nil, err
			}
			f.Options = append(f.Options, fmt.Sprintf("typedprefs.WithEntriesResource(%s)", c))
		}
		data.Fields = append(data.Fields, f)
	}

	for ref := range used {
		id, _ := ids.Lookup(ref)
		data.Resources = append(data.Resources, resourceConst{
			Name: resourceConstName(ref),
			Ref:  ref.String(),
			ID:   fmt.Sprintf("0x%08x", id),
		})
	}
	sort.Slice(data.Resources, func(i, j int) bool { return data.Resources[i].ID < data.Resources[j].ID })

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: format: %w", err)
	}
	return src, nil
}

// resourceConstName names the constant of ref, e.g. ResIntegerNumberOfRows.
func resourceConstName(ref resources.Ref) string {
	return "Res" + typedprefs.AccessorName(string(ref.Kind)) + typedprefs.AccessorName(ref.Name)
}

func goTypeOf(t typedprefs.ValueType) (string, error) {
	switch t {
	case typedprefs.StringType:
		return "string", nil
	case typedprefs.IntType:
		return "int32", nil
	case typedprefs.BoolType:
		return "bool", nil
	case typedprefs.ColorType:
		return "typedprefs.Color", nil
	case typedprefs.StringSetType:
		return "[]string", nil
	}
	return "", fmt.Errorf("%w: codegen: %q", typedprefs.ErrInvalidType, t)
}

func literal(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case typedprefs.Color:
		return fmt.Sprintf("0x%08X", uint32(v)), nil
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[]string{" + strings.Join(quoted, ", ") + "}", nil
	}
	return "", fmt.Errorf("%w: unsupported literal %T", typedprefs.ErrInvalidType, v)
}
