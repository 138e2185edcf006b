package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// FieldError is a single validation failure with a human-readable
// message suitable for returning to clients.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures from a Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first failure message, or "" when validation passed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every failure message with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// ByField returns the failures keyed by field name, for JSON error
// envelopes that report per-field problems.
func (r *Result) ByField() map[string]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Validate applies the rules in each field's `validate` tag to a struct
// value. Supported rules: required, email, min=N, max=N (string length).
// The `label` tag supplies the name used in messages; the field name is
// the fallback. Fields are checked in declaration order and a field
// stops at its first failing rule.
func Validate(v any) *Result {
	res := &Result{}
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return res
	}

	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || !f.IsExported() {
			continue
		}
		label := f.Tag.Get("label")
		if label == "" {
			label = f.Name
		}

		fv := val.Field(i)
		for _, rule := range strings.Split(tag, ",") {
			if msg := applyRule(strings.TrimSpace(rule), label, fv); msg != "" {
				res.Errors = append(res.Errors, FieldError{Field: f.Name, Message: msg})
				break
			}
		}
	}
	return res
}

func applyRule(rule, label string, fv reflect.Value) string {
	name, arg, _ := strings.Cut(rule, "=")

	switch name {
	case "required":
		if fv.IsZero() {
			return fmt.Sprintf("%s is required.", label)
		}
	case "email":
		if s, ok := stringValue(fv); ok && s != "" && !IsValidEmail(s) {
			return "A valid email address is required."
		}
	case "min":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return ""
		}
		if s, ok := stringValue(fv); ok && s != "" && len(s) < n {
			return fmt.Sprintf("%s must be at least %d characters.", label, n)
		}
	case "max":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return ""
		}
		if s, ok := stringValue(fv); ok && len(s) > n {
			return fmt.Sprintf("%s must be at most %d characters.", label, n)
		}
	}
	return ""
}

func stringValue(fv reflect.Value) (string, bool) {
	if fv.Kind() == reflect.String {
		return fv.String(), true
	}
	return "", false
}
