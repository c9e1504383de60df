package resources

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"

	"github.com/CreativeUnicorns/typedprefs"
)

// Bundle resolves ids against base values and per-locale overlays. Ids are
// allocated from the base values only; an overlay can replace a value but cannot
// introduce a new resource.
type Bundle struct {
	base     *Values
	ids      IDs
	refs     map[int]Ref
	tags     []language.Tag
	overlays map[language.Tag]*Values
	matcher  language.Matcher

	mu         sync.RWMutex
	locale     language.Tag
	chain      []*Values
	generation atomic.Uint64
}

// NewBundle builds a bundle from base values and overlays keyed by BCP 47 tag
// ("fr", "fr-CA"). The initial locale is the base.
func NewBundle(base *Values, overlays map[string]*Values) (*Bundle, error) {
	if base == nil {
		base = NewValues()
	}

	b := &Bundle{
		base:     base,
		ids:      AssignIDs(base),
		overlays: make(map[language.Tag]*Values, len(overlays)),
		locale:   language.Und,
		chain:    []*Values{base},
	}
	b.refs = b.ids.Reverse()

	keys := make([]string, 0, len(overlays))
	for k := range overlays {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.tags = []language.Tag{language.Und}
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("%w: locale %q: %v", typedprefs.ErrInvalidInput, k, err)
		}
		b.overlays[tag] = overlays[k]
		b.tags = append(b.tags, tag)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// SetLocale selects the overlay that best matches locale, falling back through its
// parents to the base values, and returns the chosen tag. A change advances
// Generation so resolved defaults are discarded.
func (b *Bundle) SetLocale(locale string) (language.Tag, error) {
	want, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: locale %q: %v", typedprefs.ErrInvalidInput, locale, err)
	}

	tag := language.Und
	if _, index, conf := b.matcher.Match(want); conf != language.No {
		// The matcher offers weak matches across languages; only an overlay of
		// the requested language is acceptable.
		wantBase, _ := want.Base()
		if gotBase, _ := b.tags[index].Base(); gotBase == wantBase {
			tag = b.tags[index]
		}
	}

	var chain []*Values
	for t := tag; t != language.Und; t = t.Parent() {
		if v, ok := b.overlays[t]; ok {
			chain = append(chain, v)
		}
	}
	chain = append(chain, b.base)

	b.mu.Lock()
	changed := b.locale != tag
	b.locale = tag
	b.chain = chain
	b.mu.Unlock()

	if changed {
		b.generation.Add(1)
	}
	return tag, nil
}

// Locale returns the selected locale, language.Und for the base values.
func (b *Bundle) Locale() language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.locale
}

// Locales returns the overlay tags in sorted order.
func (b *Bundle) Locales() []language.Tag {
	return append([]language.Tag(nil), b.tags[1:]...)
}

// IDs returns the id allocation of the base values.
func (b *Bundle) IDs() IDs {
	return b.ids
}

// ID returns the id of ref.
func (b *Bundle) ID(ref Ref) (int, bool) {
	return b.ids.Lookup(ref)
}

// Resolve returns the raw value of id for the selected locale.
func (b *Bundle) Resolve(id int) (any, error) {
	ref, ok := b.refs[id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", typedprefs.ErrResourceNotFound, id)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, values := range b.chain {
		if v, ok := values.Lookup(ref); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (0x%x)", typedprefs.ErrResourceNotFound, ref, id)
}

// Generation returns a counter that changes whenever the locale changes.
func (b *Bundle) Generation() uint64 {
	return b.generation.Load()
}
