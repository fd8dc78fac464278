package record

// Filter is a flat exact-match predicate: field name to required scalar
// value, in the forms JSON decoding produces (string, float64, bool, nil).
type Filter map[string]any

// Matches reports whether every filter key is present in the record with an
// exactly equal value. Equality is type-sensitive: true never matches "true",
// and a record field holding an array or object never matches a scalar. A
// missing key is a non-match, not an error.
func (f Filter) Matches(r Record) bool {
	for key, want := range f {
		v, ok := r.Get(key)
		if !ok || !v.equalScalar(want) {
			return false
		}
	}
	return true
}

// Apply returns the records matching f, in source order. A nil or empty
// filter is the identity.
func Apply(records []Record, f Filter) []Record {
	if len(f) == 0 {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (v Value) equalScalar(want any) bool {
	switch w := want.(type) {
	case string:
		return v.kind == KindString && v.str == w
	case float64:
		return v.kind == KindNumber && v.num == w
	case int:
		return v.kind == KindNumber && v.num == float64(w)
	case int64:
		return v.kind == KindNumber && v.num == float64(w)
	case bool:
		return v.kind == KindBool && v.b == w
	case nil:
		return v.kind == KindNull
	}
	return false
}
