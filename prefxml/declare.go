package prefxml

import (
	"fmt"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/resources"
)

// Declare defines every typed entry on r at runtime, resolving resource
// references through ids. Key-only entries are skipped. It serves tools that
// load a screen without generated code; applications should generate handles
// instead so that names are checked at compile time.
func Declare(r *typedprefs.Registry, entries []Entry, ids resources.IDs) ([]*typedprefs.Descriptor, error) {
	descriptors := make([]*typedprefs.Descriptor, 0, len(entries))
	for _, e := range entries {
		if e.KeyOnly() {
			continue
		}

		var opts []typedprefs.DescriptorOption
		if e.Values != nil {
			id, ok := ids.Lookup(*e.Values)
			if !ok {
				return nil, fmt.Errorf("%w: %q: %s", typedprefs.ErrResourceNotFound, e.Key, *e.Values)
			}
			opts = append(opts, typedprefs.WithDomainResource(id))
		}
		if e.Labels != nil {
			id, ok := ids.Lookup(*e.Labels)
			if !ok {
				return nil, fmt.Errorf("%w: %q: %s", typedprefs.ErrResourceNotFound, e.Key, *e.Labels)
			}
			opts = append(opts, typedprefs.WithEntriesResource(id))
		}

		var resID int
		if e.Source == typedprefs.DefaultResource {
			id, ok := ids.Lookup(e.Ref)
			if !ok {
				return nil, fmt.Errorf("%w: %q: %s", typedprefs.ErrResourceNotFound, e.Key, e.Ref)
			}
			resID = id
		}

		var (
			d   *typedprefs.Descriptor
			err error
		)
		switch e.Type {
		case typedprefs.StringType:
			d, err = declare[string](r, e, resID, opts)
		case typedprefs.IntType:
			d, err = declare[int32](r, e, resID, opts)
		case typedprefs.BoolType:
			d, err = declare[bool](r, e, resID, opts)
		case typedprefs.ColorType:
			d, err = declare[typedprefs.Color](r, e, resID, opts)
		case typedprefs.StringSetType:
			d, err = declare[[]string](r, e, resID, opts)
		default:
			err = fmt.Errorf("%w: %q: %q", typedprefs.ErrInvalidType, e.Key, e.Type)
		}
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func declare[T typedprefs.Value](r *typedprefs.Registry, e Entry, resID int, opts []typedprefs.DescriptorOption) (*typedprefs.Descriptor, error) {
	var def typedprefs.DefaultSpec[T]
	switch e.Source {
	case typedprefs.DefaultLiteral:
		v, ok := e.Literal.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %q: literal %T", typedprefs.ErrInvalidType, e.Key, e.Literal)
		}
		def = typedprefs.Literal(v)
	case typedprefs.DefaultResource:
		def = typedprefs.FromResource[T](resID)
	default:
		def = typedprefs.NoDefault[T]()
	}

	p, err := typedprefs.Define(r, e.Key, def, opts...)
	if err != nil {
		return nil, err
	}
	return p.Descriptor(), nil
}
