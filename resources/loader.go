package resources

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// LoadDir loads a resource directory from disk. See LoadFS.
func LoadDir(dir string) (*Bundle, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads every values*/ directory under root. "values" holds the base
// values; "values-<qualifier>" holds a locale overlay when the qualifier is a
// locale ("fr", "fr-rCA", "b+sr+Latn"), and is skipped otherwise. Files ending in
// .xml, .yaml or .yml are read in name order.
func LoadFS(fsys fs.FS, root string) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("resources: read %s: %w", root, err)
	}

	base := NewValues()
	overlays := make(map[string]*Values)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		var locale string
		switch {
		case name == "values":
		case strings.HasPrefix(name, "values-"):
			tag, ok := qualifierLocale(strings.TrimPrefix(name, "values-"))
			if !ok {
				continue
			}
			locale = tag
		default:
			continue
		}

		values, err := loadValuesDir(fsys, path.Join(root, name))
		if err != nil {
			return nil, err
		}
		if locale == "" {
			base.Merge(values)
			continue
		}
		if existing, ok := overlays[locale]; ok {
			existing.Merge(values)
		} else {
			overlays[locale] = values
		}
	}

	return NewBundle(base, overlays)
}

func loadValuesDir(fsys fs.FS, dir string) (*Values, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("resources: read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	values := NewValues()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file := path.Join(dir, entry.Name())

		var parse func(*bytes.Reader) (*Values, error)
		switch path.Ext(entry.Name()) {
		case ".xml":
			parse = func(r *bytes.Reader) (*Values, error) { return ParseXML(r) }
		case ".yaml", ".yml":
			parse = func(r *bytes.Reader) (*Values, error) { return ParseYAML(r) }
		default:
			continue
		}

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("resources: read %s: %w", file, err)
		}
		parsed, err := parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("resources: %s: %w", file, err)
		}
		values.Merge(parsed)
	}
	return values, nil
}

// qualifierLocale converts a directory qualifier to a BCP 47 tag.
func qualifierLocale(q string) (string, bool) {
	var parts []string
	if strings.HasPrefix(q, "b+") {
		parts = strings.Split(strings.TrimPrefix(q, "b+"), "+")
	} else {
		parts = strings.Split(q, "-")
		if len(parts) > 2 {
			return "", false
		}
		if len(parts) == 2 {
			if len(parts[1]) != 3 || parts[1][0] != 'r' {
				return "", false
			}
			parts[1] = parts[1][1:]
		}
	}

	tag, err := language.Parse(strings.Join(parts, "-"))
	if err != nil {
		return "", false
	}
	return tag.String(), true
}
