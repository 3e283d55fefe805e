package schema

import (
	"fmt"
	"strings"
)

// RuleKind identifies the kind of a validation rule.
type RuleKind string

const (
	// RuleRequired checks the field is set and non-empty.
	RuleRequired RuleKind = "required"

	// RuleFormatEmail checks the field holds a syntactically valid
	// email address.
	RuleFormatEmail RuleKind = "format_email"

	// RuleFormatPhoneNumber checks the field holds a valid E.164
	// phone number.
	RuleFormatPhoneNumber RuleKind = "format_phone_number"

	// RuleCustom runs a caller-supplied predicate over the full record,
	// which allows cross-field checks.
	RuleCustom RuleKind = "custom"
)

// Rule is a validation rule attached to a composed schema.
type Rule struct {
	// Field is the target field name.
	Field string

	// Kind selects the built-in check to run.
	Kind RuleKind

	// Check is the predicate for RuleCustom rules. It receives the
	// field value (nil when unset) and the full record, and returns
	// a non-nil error on failure.
	Check func(value any, record Record) error
}

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	// ErrorMissing indicates a non-nullable or required field is unset.
	ErrorMissing ErrorKind = "missing"

	// ErrorInvalidFormat indicates a format rule rejected the value.
	ErrorInvalidFormat ErrorKind = "invalid_format"

	// ErrorCustomRuleFailed indicates a custom predicate rejected the record.
	ErrorCustomRuleFailed ErrorKind = "custom_rule_failed"
)

// Entry is a single validation failure, addressable by field.
type Entry struct {
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Report accumulates validation failures for one record.
// An empty report means the record is valid.
type Report struct {
	Entries []Entry `json:"entries,omitempty"`
}

// Add appends a failure entry to the report.
func (r *Report) Add(field string, kind ErrorKind, message string) {
	r.Entries = append(r.Entries, Entry{Field: field, Kind: kind, Message: message})
}

// Valid returns whether the report is empty.
func (r Report) Valid() bool {
	return len(r.Entries) == 0
}

// Error returns a combined message for all entries.
func (r Report) Error() string {
	if r.Valid() {
		return ""
	}
	msgs := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; ")
}
