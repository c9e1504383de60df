package typedprefs

import (
	"strings"
	"unicode"
)

// AccessorName converts a preference key into an exported Go identifier.
// lower_underscore, lower-hyphen, dotted and UPPER_UNDERSCORE keys become UpperCamel;
// keys that are already camel case keep their casing with the first letter raised.
func AccessorName(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})

	var b strings.Builder
	if len(words) == 1 && words[0] == key {
		b.WriteString(upperFirst(key))
	} else {
		for _, w := range words {
			b.WriteString(upperFirst(strings.ToLower(w)))
		}
	}

	name := b.String()
	if name == "" {
		return ""
	}
	if r := []rune(name)[0]; !unicode.IsLetter(r) {
		name = "P" + name
	}
	return name
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
