package identity

import (
	"sort"
	"strings"
)

// Row is the canonical form of one upload row. A nil field either had no
// column or failed normalization.
type Row struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone_number,omitempty"`
	Aadhar *string `json:"aadhar_number,omitempty"`

	// Rejected lists the identifier fields whose non-blank raw value failed
	// normalization. The row is still usable when another identifier survived.
	Rejected []string `json:"-"`
}

// HasAnyIdentifier reports whether email, phone or aadhar survived normalization.
func (r Row) HasAnyIdentifier() bool {
	return r.Email != nil || r.Phone != nil || r.Aadhar != nil
}

// Issues describes each rejected identifier in upload-report wording.
func (r Row) Issues() []string {
	issues := make([]string, 0, len(r.Rejected))
	for _, field := range r.Rejected {
		switch field {
		case FieldEmail:
			issues = append(issues, "Invalid email format")
		case FieldPhone:
			issues = append(issues, "Invalid phone number")
		case FieldAadhar:
			issues = append(issues, "Invalid aadhar number")
		}
	}
	return issues
}

// MissingIdentifierReason is reported for rows that fail the identifier gate.
const MissingIdentifierReason = "At least one valid identifier (phone_number, email, or aadhar_number) is required"

// NormalizeRow applies the matching normalizer to every column of rawRow
// whose header maps to a canonical field. headerMapping is raw header to
// canonical name, as built by NormalizeHeaders. Columns that fail
// normalization are dropped; identifiers among them are listed in Rejected
// unless another column supplied the same field. Columns are visited in
// header order so duplicate columns resolve the same way on every run.
func NormalizeRow(rawRow map[string]string, headerMapping map[string]string) Row {
	headers := make([]string, 0, len(rawRow))
	for header := range rawRow {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	var row Row
	failed := map[string]bool{}
	for _, header := range headers {
		canonical, ok := headerMapping[header]
		if !ok {
			continue
		}
		value := rawRow[header]
		switch canonical {
		case FieldName:
			if row.Name == nil {
				row.Name = NormalizeName(value)
			}
		case FieldEmail:
			row.Email = pick(row.Email, NormalizeEmail(value), value, FieldEmail, failed)
		case FieldPhone:
			row.Phone = pick(row.Phone, NormalizePhone(value), value, FieldPhone, failed)
		case FieldAadhar:
			row.Aadhar = pick(row.Aadhar, NormalizeAadhar(value), value, FieldAadhar, failed)
		}
	}

	for _, field := range []string{FieldEmail, FieldPhone, FieldAadhar} {
		if failed[field] && row.value(field) == nil {
			row.Rejected = append(row.Rejected, field)
		}
	}
	return row
}

func (r Row) value(field string) *string {
	switch field {
	case FieldName:
		return r.Name
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldAadhar:
		return r.Aadhar
	}
	return nil
}

// pick keeps the first accepted value for a field. A blank raw value is
// simply absent; a non-blank one that failed normalization is noted.
func pick(current, normalized *string, raw, field string, failed map[string]bool) *string {
	if current != nil {
		return current
	}
	if normalized == nil && strings.TrimSpace(raw) != "" {
		failed[field] = true
	}
	return normalized
}
