// Package validate implements the shared field validation pipeline.
//
// All resource payloads and query strings are checked by one generic routine
// driven by declarative per-field rule tables. Checks run in a fixed order and
// the first failing check short-circuits; its message is returned verbatim.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Result mirrors the {isValid, message} contract of the validation layer.
type Result struct {
	IsValid bool
	Message string
}

func Valid() Result { return Result{IsValid: true} }

func Invalid(message string) Result { return Result{Message: message} }

// Check is a single pre-evaluated constraint on a present field.
type Check struct {
	OK      bool
	Message string
}

// Field is one entry in a rule table: whether the value is present, the
// message to return when a required value is absent (empty for optional
// fields), and the ordered format checks applied to present values.
//
// Presence is loose: empty strings, zero amounts and nil booleans all count
// as absent.
type Field struct {
	Present     bool
	RequiredMsg string
	Checks      []Check
}

// First runs a rule table in order and returns the first failure.
// When catchAll is non-empty and every field in the table is absent, the
// catch-all message is returned before any per-field check.
func First(catchAll string, fields ...Field) Result {
	if catchAll != "" {
		missing := true
		for _, f := range fields {
			if f.Present {
				missing = false
				break
			}
		}
		if missing {
			return Invalid(catchAll)
		}
	}
	for _, f := range fields {
		if !f.Present {
			if f.RequiredMsg != "" {
				return Invalid(f.RequiredMsg)
			}
			continue
		}
		for _, c := range f.Checks {
			if !c.OK {
				return Invalid(c.Message)
			}
		}
	}
	return Valid()
}

// Text builds a required string field.
func Text(value, requiredMsg string, checks ...Check) Field {
	return Field{Present: value != "", RequiredMsg: requiredMsg, Checks: checks}
}

// OptionalText builds an optional string field; its checks apply only when a
// value is present.
func OptionalText(value string, checks ...Check) Field {
	return Field{Present: value != "", Checks: checks}
}

// Amount builds a required numeric field. A zero amount counts as absent.
func Amount(value float64, requiredMsg string, checks ...Check) Field {
	return Field{Present: value != 0, RequiredMsg: requiredMsg, Checks: checks}
}

// Flag builds a required boolean field. Only a nil pointer counts as absent;
// false is a legitimate value.
func Flag(value *bool, requiredMsg string) Field {
	return Field{Present: value != nil, RequiredMsg: requiredMsg}
}

// ID builds a required identifier field.
func ID(value int64, requiredMsg string) Field {
	return Field{Present: value > 0, RequiredMsg: requiredMsg}
}

// Length checks that a string length falls within [min, max].
func Length(value string, min, max int, message string) Check {
	return Check{OK: len(value) >= min && len(value) <= max, Message: message}
}

// MinLength checks that a string is at least min characters long.
func MinLength(value string, min int, message string) Check {
	return Check{OK: len(value) >= min, Message: message}
}

// NonNegative checks that a numeric value is not below zero.
func NonNegative(value float64, message string) Check {
	return Check{OK: value >= 0, Message: message}
}

// Enum checks membership in a closed whitelist. The failure message lists the
// allowed values after the given prefix.
func Enum(value string, allowed []string, prefix string) Check {
	ok := false
	for _, a := range allowed {
		if a == value {
			ok = true
			break
		}
	}
	return Check{OK: ok, Message: fmt.Sprintf("%s%s", prefix, strings.Join(allowed, ", "))}
}

// Exactly checks an exact string length.
func Exactly(value string, n int, message string) Check {
	return Check{OK: len(value) == n, Message: message}
}

// Uppercase checks that the value is already fully upper-cased.
func Uppercase(value, message string) Check {
	return Check{OK: strings.ToUpper(value) == value, Message: message}
}

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

// Email checks the loose address format used at sign-up.
func Email(value, message string) Check {
	return Check{OK: emailPattern.MatchString(value), Message: message}
}
