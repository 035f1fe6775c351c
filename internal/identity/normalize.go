// Package identity turns raw upload headers and cell values into canonical
// field names and identifier values. Every function is pure.
package identity

import (
	"regexp"
	"strings"
)

// Canonical field names produced by NormalizeHeader.
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldPhone  = "phone_number"
	FieldAadhar = "aadhar_number"
)

const (
	phoneLength         = 10
	prefixedPhoneLength = 12
	aadharLength        = 12
	countryPrefix       = "91"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// headerSynonyms maps a cleaned header to its canonical field.
var headerSynonyms = map[string]string{
	"name":          FieldName,
	"full_name":     FieldName,
	"fullname":      FieldName,
	"customer_name": FieldName,
	"customername":  FieldName,
	"client_name":   FieldName,

	"phone":          FieldPhone,
	"phone_number":   FieldPhone,
	"phonenumber":    FieldPhone,
	"mobile":         FieldPhone,
	"mobile_number":  FieldPhone,
	"contact":        FieldPhone,
	"contact_number": FieldPhone,

	"email":         FieldEmail,
	"email_id":      FieldEmail,
	"emailid":       FieldEmail,
	"mail":          FieldEmail,
	"e_mail":        FieldEmail,
	"email_address": FieldEmail,

	"aadhar":         FieldAadhar,
	"aadhaar":        FieldAadhar,
	"aadhar_number":  FieldAadhar,
	"aadhaar_number": FieldAadhar,
	"aadhar_no":      FieldAadhar,
}

// CleanHeader lower-cases and trims raw and replaces whitespace runs with '_'.
func CleanHeader(raw string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "_")
}

// NormalizeHeader resolves a raw header to a canonical field name. Headers
// outside the synonym table report ok=false.
func NormalizeHeader(raw string) (string, bool) {
	canonical, ok := headerSynonyms[CleanHeader(raw)]
	return canonical, ok
}

// NormalizeHeaders maps each raw header to its canonical name, skipping
// headers that have none.
func NormalizeHeaders(raw []string) map[string]string {
	mapping := make(map[string]string, len(raw))
	for _, h := range raw {
		if canonical, ok := NormalizeHeader(h); ok {
			mapping[h] = canonical
		}
	}
	return mapping
}

// NormalizePhone keeps the digits of raw and reduces them to a 10-digit
// national number. A 12-digit number starting with 91 loses the prefix, any
// other longer number keeps its last 10 digits, and shorter input is nil.
func NormalizePhone(raw string) *string {
	digits := digitsOf(raw)
	if len(digits) > phoneLength {
		if len(digits) == prefixedPhoneLength && strings.HasPrefix(digits, countryPrefix) {
			digits = digits[len(countryPrefix):]
		} else {
			digits = digits[len(digits)-phoneLength:]
		}
	}
	if len(digits) < phoneLength {
		return nil
	}
	return &digits
}

// NormalizeEmail trims and lower-cases raw and returns nil unless the result
// looks like local@domain.tld.
func NormalizeEmail(raw string) *string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return nil
	}
	return &email
}

// NormalizeAadhar keeps the digits of raw and accepts exactly 12 of them.
func NormalizeAadhar(raw string) *string {
	digits := digitsOf(raw)
	if len(digits) != aadharLength {
		return nil
	}
	return &digits
}

// NormalizeName trims raw. Blank names are nil.
func NormalizeName(raw string) *string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil
	}
	return &name
}

// IsValidEmail reports whether raw normalizes to an email.
func IsValidEmail(raw string) bool { return NormalizeEmail(raw) != nil }

// IsValidPhone reports whether raw normalizes to a phone number.
func IsValidPhone(raw string) bool { return NormalizePhone(raw) != nil }

// IsValidAadhar reports whether raw normalizes to an aadhar number.
func IsValidAadhar(raw string) bool { return NormalizeAadhar(raw) != nil }

func digitsOf(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
