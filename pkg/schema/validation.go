package schema

import "fmt"

// ValidationSeverity separates problems that reject a graph from ones that
// are repaired or merely reported.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue is one finding. Path addresses the offending element in
// document terms, e.g. "nodes[2].agentType" or "edges[0]".
type ValidationIssue struct {
	Path     string             `json:"path"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"severity"`
}

func (i ValidationIssue) String() string {
	if i.Path == "" || i.Path == "/" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationResult collects the findings of an import or a graph check.
// Warnings never make a result invalid.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) AddError(path, code, message string) {
	r.Errors = append(r.Errors, ValidationIssue{path, code, message, SeverityError})
}

func (r *ValidationResult) AddWarning(path, code, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{path, code, message, SeverityWarning})
}

// Merge appends other's findings. A nil other is a no-op.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ToError returns nil for a valid result. Otherwise it returns a VALIDATION
// FlowError carrying every finding in its details; the message is the single
// error's text or a count.
func (r *ValidationResult) ToError() error {
	if r.Valid() {
		return nil
	}
	msg := r.Errors[0].Message
	if n := len(r.Errors); n > 1 {
		msg = fmt.Sprintf("validation failed with %d errors", n)
	}
	return NewError(ErrCodeValidation, msg).WithDetails(map[string]any{
		"error_count":   len(r.Errors),
		"warning_count": len(r.Warnings),
		"errors":        r.Errors,
		"warnings":      r.Warnings,
	})
}
