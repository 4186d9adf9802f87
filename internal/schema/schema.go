// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package schema declares the expected shape of each raw input record and
// validates and coerces raw JSON rows against it.
//
// A schema is an ordered list of (name, type, required) fields. Validation is
// a pure function over a single record; what happens to a record that fails
// is an explicit policy choice:
//
//   - PolicyNullify: the offending field becomes null and the record is kept.
//     This is the default.
//   - PolicyDrop: the record is rejected.
//   - PolicyFail: the first violation aborts the run.
//
// Whatever the policy, every violation is reported to the caller so it can be
// counted and logged.
package schema

import (
	"errors"
	"fmt"

	"github.com/HvyD/DataLake/internal/config"
)

// Type is the declared type of a schema field.
type Type int

// Field types supported by the registry. They mirror the primitive types of
// the raw JSON sources: strings, 32-bit and 64-bit integers, and doubles.
const (
	TypeString Type = iota
	TypeInt
	TypeLong
	TypeDouble
)

// String returns the type name used in violation messages.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeDouble:
		return "double"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Field is one (name, type, required) entry of a schema.
type Field struct {
	Name     string
	Type     Type
	Required bool
}

// Schema is the ordered field list for one input dataset.
type Schema struct {
	Name   string
	Fields []Field
}

// Policy selects what happens to a record with a schema violation.
type Policy int

const (
	// PolicyNullify coerces the offending field to null and keeps the record.
	PolicyNullify Policy = iota

	// PolicyDrop rejects the record.
	PolicyDrop

	// PolicyFail aborts the run on the first violation.
	PolicyFail
)

// ParsePolicy converts the configured policy name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case config.PolicyNullify, "":
		return PolicyNullify, nil
	case config.PolicyDrop:
		return PolicyDrop, nil
	case config.PolicyFail:
		return PolicyFail, nil
	default:
		return PolicyNullify, fmt.Errorf("unknown schema policy %q", name)
	}
}

// ErrViolation is the sentinel wrapped by errors returned under PolicyFail.
var ErrViolation = errors.New("schema violation")

// Violation describes one field that failed validation.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}

// Row is a coerced record: field name to one of string, int32, int64,
// float64, or nil for a null value. Fields not declared in the schema are
// not carried over.
type Row map[string]any

// Result is the outcome of validating one raw record.
type Result struct {
	// Row holds the coerced record. Nil when the record was dropped.
	Row Row

	// Violations lists every field that failed validation, regardless of
	// policy, so callers can count and log them.
	Violations []Violation

	// Dropped reports whether the policy rejected the record.
	Dropped bool
}

// Validate validates and coerces one raw decoded JSON object against the
// schema under the given policy. The error return is non-nil only under
// PolicyFail, and wraps ErrViolation.
func (s Schema) Validate(raw map[string]any, policy Policy) (Result, error) {
	row := make(Row, len(s.Fields))
	var violations []Violation

	for _, f := range s.Fields {
		value, violation := coerce(raw[f.Name], f)
		row[f.Name] = value
		if violation != nil {
			violations = append(violations, *violation)
		}
	}

	if len(violations) > 0 {
		switch policy {
		case PolicyFail:
			return Result{Violations: violations, Dropped: true},
				fmt.Errorf("%w in %s record: %s", ErrViolation, s.Name, violations[0])
		case PolicyDrop:
			return Result{Violations: violations, Dropped: true}, nil
		case PolicyNullify:
			// fall through with nulls in place
		}
	}

	return Result{Row: row, Violations: violations}, nil
}

// coerce converts one raw value to the field's declared type. A nil return
// value with a violation means the field was nulled out.
func coerce(v any, f Field) (any, *Violation) {
	if v == nil {
		if f.Required {
			return nil, &Violation{Field: f.Name, Reason: "required field is null or missing"}
		}
		return nil, nil
	}

	switch f.Type {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		if n, ok := asInt64(v); ok && n >= -1<<31 && n < 1<<31 {
			return int32(n), nil
		}
	case TypeLong:
		if n, ok := asInt64(v); ok {
			return n, nil
		}
	case TypeDouble:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	}

	return nil, &Violation{
		Field:  f.Name,
		Reason: fmt.Sprintf("value %v is not a %s", v, f.Type),
	}
}

// asInt64 extracts an integral value from a decoded JSON number.
// JSON decoding yields float64; fractional values are not integers.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	}
	return 0, false
}
