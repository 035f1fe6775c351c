// Package validator checks upload headers and cells against the active
// canonical fields. Every check returns the full list of problems it found;
// an empty list means the input passed.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"leadhub/internal/canonicalfield/models"
	"leadhub/internal/identity"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
}

var booleanValues = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"1": true, "0": true,
	"y": true, "n": true,
}

const (
	minPhoneDigits = 10
	maxPhoneDigits = 12
)

// Schema is the active part of the canonical field list, indexed by name.
type Schema struct {
	fields []*models.CanonicalField
	byName map[string]*models.CanonicalField
}

// NewSchema keeps the active fields of fields.
func NewSchema(fields []*models.CanonicalField) *Schema {
	s := &Schema{byName: make(map[string]*models.CanonicalField)}
	for _, f := range models.Active(fields) {
		name := strings.ToLower(strings.TrimSpace(f.FieldName))
		s.fields = append(s.fields, f)
		s.byName[name] = f
	}
	return s
}

// Fields returns the active fields in their stored order.
func (s *Schema) Fields() []*models.CanonicalField {
	return s.fields
}

// Resolve maps a raw header to an active field name, first directly and then
// through the identity synonym table.
func (s *Schema) Resolve(header string) (string, bool) {
	cleaned := identity.CleanHeader(header)
	if _, ok := s.byName[cleaned]; ok {
		return cleaned, true
	}
	if canonical, ok := identity.NormalizeHeader(header); ok {
		if _, ok := s.byName[canonical]; ok {
			return canonical, true
		}
	}
	return "", false
}

// ValidateFieldCount requires exactly one column per active field.
func (s *Schema) ValidateFieldCount(headers []string) []string {
	if len(headers) == len(s.fields) {
		return nil
	}
	return []string{fmt.Sprintf(
		"Field count mismatch: Expected %d fields (based on active canonical fields), but CSV has %d columns",
		len(s.fields), len(headers))}
}

// ValidateHeaders requires every header to resolve to an active field and
// every active field to be covered by some header.
func (s *Schema) ValidateHeaders(headers []string) []string {
	var errs []string
	covered := make(map[string]bool, len(headers))
	for _, h := range headers {
		name, ok := s.Resolve(h)
		if !ok {
			errs = append(errs, fmt.Sprintf("Header '%s' does not match any active canonical field", h))
			continue
		}
		covered[name] = true
	}
	for _, f := range s.fields {
		if !covered[strings.ToLower(strings.TrimSpace(f.FieldName))] {
			errs = append(errs, fmt.Sprintf("Missing required canonical field: '%s'", f.FieldName))
		}
	}
	return errs
}

// ValidateRow type-checks every cell of row whose header resolves to an
// active field, then reports required fields no column supplied. headers
// fixes the order errors are reported in.
func (s *Schema) ValidateRow(headers []string, row map[string]string) []string {
	var errs []string
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		value, ok := row[h]
		if !ok {
			continue
		}
		name, ok := s.Resolve(h)
		if !ok {
			continue
		}
		present[name] = true
		errs = append(errs, ValidateValue(value, s.byName[name])...)
	}
	for _, f := range s.fields {
		if f.IsRequired && !present[strings.ToLower(strings.TrimSpace(f.FieldName))] {
			errs = append(errs, fmt.Sprintf("Required field '%s' is missing", f.FieldName))
		}
	}
	return errs
}

// ValidateValue checks one cell against its field's type. An empty cell only
// fails when the field is required.
func ValidateValue(value string, f *models.CanonicalField) []string {
	v := strings.TrimSpace(value)
	if v == "" {
		if f.IsRequired {
			return []string{fmt.Sprintf("Field '%s' is required but is empty", f.FieldName)}
		}
		return nil
	}

	switch f.FieldType {
	case models.TypeString:
		return nil
	case models.TypeNumber:
		if !IsNumber(v) {
			return []string{fmt.Sprintf("Field '%s' expects Number type but got '%s'", f.FieldName, v)}
		}
	case models.TypeDate:
		if !IsDate(v) {
			return []string{fmt.Sprintf(
				"Field '%s' expects Date type but got '%s' (expected formats: yyyy-MM-dd, dd-MM-yyyy, MM/dd/yyyy, dd/MM/yyyy, yyyy/MM/dd)",
				f.FieldName, v)}
		}
	case models.TypeBoolean:
		if !IsBoolean(v) {
			return []string{fmt.Sprintf(
				"Field '%s' expects Boolean type but got '%s' (expected: true, false, yes, no, 1, 0)", f.FieldName, v)}
		}
	case models.TypeEmail:
		if !identity.IsValidEmail(v) {
			return []string{fmt.Sprintf("Field '%s' expects Email type but got '%s'", f.FieldName, v)}
		}
	case models.TypePhone:
		if !IsPhone(v) {
			return []string{fmt.Sprintf(
				"Field '%s' expects Phone type but got '%s' (expected: 10-12 digits)", f.FieldName, v)}
		}
	default:
		return []string{fmt.Sprintf("Unknown field type: %s", f.FieldType)}
	}
	return nil
}

// IsNumber reports whether v parses as a decimal number.
func IsNumber(v string) bool {
	_, err := decimal.NewFromString(v)
	return err == nil
}

// IsDate reports whether v matches one of the accepted date layouts.
func IsDate(v string) bool {
	_, ok := ParseDate(v)
	return ok
}

// ParseDate parses v with the first matching layout.
func ParseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsBoolean reports whether v is one of the accepted boolean spellings.
func IsBoolean(v string) bool {
	return booleanValues[strings.ToLower(strings.TrimSpace(v))]
}

// IsPhone reports whether v holds 10 to 12 digits once separators are removed.
func IsPhone(v string) bool {
	n := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n >= minPhoneDigits && n <= maxPhoneDigits
}
