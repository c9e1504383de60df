// Package sample is the demonstration application's preference set: a preference
// screen, its resource values, the handles generated from them, and the text
// dump the demonstration screen shows.
package sample

//go:generate go run ../cmd/prefsctl gen --prefs res/xml/preferences.xml --res res --package sample --out p.go

import (
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/prefxml"
	"github.com/CreativeUnicorns/typedprefs/resources"
)

// Files holds the preference screen and the resource values.
//
//go:embed res
var Files embed.FS

// New creates a registry and declares the sample preferences on it.
func New(opts ...typedprefs.Option) (*typedprefs.Registry, *P) {
	r := typedprefs.NewRegistry(opts...)
	return r, NewP(r)
}

// Resources loads the embedded resource values.
func Resources() (*resources.Bundle, error) {
	return resources.LoadFS(Files, "res")
}

// Screen parses the embedded preference screen.
func Screen() ([]prefxml.Entry, error) {
	return prefxml.ParseFS(Files, "res/xml/*.xml")
}

// Dump writes the text the demonstration screen displays: every entry with its
// key, its resource id when the default is resource-backed, and its default.
// A default that cannot be resolved is written as an error line.
func Dump(w io.Writer, p *P) error {
	d := &dumper{w: w}

	d.title("Server category")
	d.field("key", KeyCategoryServer)
	d.line("")

	dumpPref(d, "Number of columns", p.NumberOfColumns)
	dumpPref(d, "Number of rows", p.NumberOfRows)
	dumpPref(d, "Primary color", p.PrimaryColor)
	dumpPref(d, "Request agent", p.RequestAgent)
	dumpPref(d, "Request types", p.RequestTypes)
	dumpPref(d, "Server url", p.ServerUrl)
	dumpPref(d, "Show images", p.ShowImages)
	dumpPref(d, "Use inputs", p.UseInputs)

	return d.err
}

func dumpPref[T typedprefs.Value](d *dumper, title string, p *typedprefs.Pref[T]) {
	d.title(title)
	d.field("key", p.Key())
	if id, ok := p.Descriptor().ResourceID(); ok {
		d.field("defaultResId", fmt.Sprintf("0x%08x", id))
	}

	v, err := p.DefaultValue()
	if err != nil {
		d.field("defaultValue", "error: "+err.Error())
	} else {
		d.field("defaultValue", FormatValue(v))
	}
	d.line("")
}

// FormatValue renders a preference value for display.
func FormatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// dumper stops writing after the first error.
type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(s string) {
	if d.err != nil {
		return
	}
	_, d.err = io.WriteString(d.w, s+"\n")
}

func (d *dumper) title(s string) {
	d.line(s + ":")
}

func (d *dumper) field(name, value string) {
	d.line("\t" + name + ": " + value)
}
