package resources

// idBase is the package byte of application resources.
const idBase = 0x7f000000

// IDs maps resource references to numeric ids.
type IDs map[Ref]int

// AssignIDs numbers every value of v as 0x7fTTNNNN, where TT is the fixed index of
// the kind and NNNN the position of the name in sorted order.
func AssignIDs(v *Values) IDs {
	ids := make(IDs, v.Len())
	for _, kind := range Kinds() {
		for i, name := range v.Names(kind) {
			ids[Ref{Kind: kind, Name: name}] = ID(kind, i)
		}
	}
	return ids
}

// ID returns the id of the index-th name of kind.
func ID(kind Kind, index int) int {
	return idBase | kindIndex[kind]<<16 | index
}

// Lookup returns the id of ref.
func (ids IDs) Lookup(ref Ref) (int, bool) {
	id, ok := ids[ref]
	return id, ok
}

// Reverse maps ids back to references.
func (ids IDs) Reverse() map[int]Ref {
	refs := make(map[int]Ref, len(ids))
	for ref, id := range ids {
		refs[id] = ref
	}
	return refs
}
