package domain

// Severity classifies a validation finding.
type Severity string

const (
	// SeverityWarn marks findings the caller should review but that do not
	// block serialization, such as positions outside the wafermap extent.
	SeverityWarn Severity = "warn"
	// SeverityBlock marks findings that must be resolved before the
	// positionlist can be written.
	SeverityBlock Severity = "block"
)

// Violation reports a failed check against one entry or the list itself.
// EntryID is negative for list-level findings.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	EntryID  int
}

// Result aggregates violations from a validation pass.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns only the warn-severity violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityWarn {
			out = append(out, v)
		}
	}
	return out
}
