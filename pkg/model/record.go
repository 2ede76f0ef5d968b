package model

// Record is one unit of domain data in flight through the pipeline: field
// name to value. A record is owned by a single batch pass; pre-storage rings
// may mutate it, post-storage rings only enrich it.
type Record map[string]any

// Clone returns a shallow copy of the record. Values are shared; only the
// top-level map is copied.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the field is present with a non-nil value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}
