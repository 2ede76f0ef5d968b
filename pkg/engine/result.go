package engine

// IndexedError is one record failure tagged with the record's batch index.
type IndexedError struct {
	RecordIndex int
	Err         error
}

// IndexedWarning is one non-fatal advisory tagged with the record's batch
// index.
type IndexedWarning struct {
	RecordIndex int
	Warning     *ValidationWarning
}

// Result is the final batch verdict of one Execute call: created once per
// call, immutable thereafter. The batch succeeds iff Errors is empty;
// warnings never affect the verdict.
type Result struct {
	Success  bool
	Errors   []IndexedError
	Warnings []IndexedWarning
}

// ErrorsForRecord returns the errors tagged with the given batch index.
func (r *Result) ErrorsForRecord(index int) []error {
	var out []error
	for _, ie := range r.Errors {
		if ie.RecordIndex == index {
			out = append(out, ie.Err)
		}
	}
	return out
}
