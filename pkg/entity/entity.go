// Package entity holds the identifier capability shared by every record type
// and the two operations built on it: identifier equality and the
// add-if-missing merge used to keep relationship selectors populated.
package entity

// Identifiable is implemented by any record with a server-assigned numeric
// identifier. ok is false for records that have not been persisted yet.
type Identifiable interface {
	Identifier() (id int64, ok bool)
}

// Ref constrains P to a pointer to E that is Identifiable. It lets the
// helpers below treat a nil P as an absent reference.
type Ref[E any] interface {
	*E
	Identifiable
}

// Identifier returns the id of v, or false when v is nil or unsaved.
func Identifier[E any, P Ref[E]](v P) (int64, bool) {
	if v == nil {
		return 0, false
	}
	return v.Identifier()
}

// Compare reports whether a and b refer to the same record. Two absent
// references are equal; an absent and a present one are not. Present
// references are equal only when both carry the same identifier.
func Compare[E any, P Ref[E]](a, b P) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ida, oka := a.Identifier()
	idb, okb := b.Identifier()
	return oka && okb && ida == idb
}

// AddToCollectionIfMissing returns collection with every present candidate
// whose identifier is not already known prepended to it. Candidates keep
// their relative order and the first occurrence of an identifier wins.
// Candidates without an identifier never match anything and are always
// added. When no candidate is present, collection is returned as is.
// The input slice is never modified.
func AddToCollectionIfMissing[E any, P Ref[E]](collection []P, candidates ...P) []P {
	present := make([]P, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return collection
	}

	known := make(map[int64]struct{}, len(collection)+len(present))
	for _, item := range collection {
		if id, ok := Identifier[E](item); ok {
			known[id] = struct{}{}
		}
	}

	toAdd := make([]P, 0, len(present))
	for _, c := range present {
		id, ok := c.Identifier()
		if ok {
			if _, dup := known[id]; dup {
				continue
			}
			known[id] = struct{}{}
		}
		toAdd = append(toAdd, c)
	}

	out := make([]P, 0, len(toAdd)+len(collection))
	out = append(out, toAdd...)
	return append(out, collection...)
}
