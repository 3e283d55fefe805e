// Package validation runs a composed schema's rules over a model
// instance and produces a field-addressable report.
//
// The pipeline is pure: it never consults external state and is safe to
// call before any persistence attempt. Every rule runs; a failure is
// appended to the report without short-circuiting later rules, so the
// caller sees all violations in one pass.
package validation

import (
	"fmt"
	"net/mail"

	"github.com/nyaruka/phonenumbers"

	"github.com/declmodel/declmodel/core/schema"
)

// Validate checks the record against every rule of the composed schema,
// in rule order, and returns the accumulated report. An empty report
// means the record is valid.
func Validate(composed *schema.Composed, record schema.Record) schema.Report {
	var report schema.Report

	// Fields absent from the instance but not nullable and without a
	// recoverable default are missing, regardless of declared rules.
	missing := make(map[string]bool)
	for _, f := range composed.Fields {
		if f.Nullable || f.Default != nil {
			continue
		}
		if isUnset(record[f.Name]) {
			missing[f.Name] = true
			report.Add(f.Name, schema.ErrorMissing, "field is missing")
		}
	}

	for _, rule := range composed.Rules {
		value := record[rule.Field]

		switch rule.Kind {
		case schema.RuleRequired:
			if missing[rule.Field] {
				continue // already reported by the presence scan
			}
			if isUnset(value) {
				report.Add(rule.Field, schema.ErrorMissing, "field is required")
			}

		case schema.RuleFormatEmail:
			if isUnset(value) {
				continue
			}
			checkFormat(&report, rule.Field, value, validEmail, "invalid email address")

		case schema.RuleFormatPhoneNumber:
			if isUnset(value) {
				continue
			}
			checkFormat(&report, rule.Field, value, validPhoneNumber, "invalid phone number")

		case schema.RuleCustom:
			if rule.Check == nil {
				continue
			}
			if err := rule.Check(value, record); err != nil {
				report.Add(rule.Field, schema.ErrorCustomRuleFailed, err.Error())
			}
		}
	}

	return report
}

// checkFormat applies a string format predicate, reporting non-string
// values as format failures too.
func checkFormat(report *schema.Report, field string, value any, valid func(string) bool, message string) {
	str, ok := value.(string)
	if !ok {
		report.Add(field, schema.ErrorInvalidFormat, fmt.Sprintf("must be a string, got %T", value))
		return
	}
	if !valid(str) {
		report.Add(field, schema.ErrorInvalidFormat, message)
	}
}

// validEmail checks an RFC 5322 address. The bare address form is
// required: display names are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// validPhoneNumber checks an E.164 number. The region is left empty on
// purpose: only fully qualified numbers with a country code pass.
func validPhoneNumber(s string) bool {
	num, err := phonenumbers.Parse(s, "")
	return err == nil && phonenumbers.IsValidNumber(num)
}

// isUnset reports whether a value counts as unset for presence checks:
// absent, nil, the empty string or an empty list.
func isUnset(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
