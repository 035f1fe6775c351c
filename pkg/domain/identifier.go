package domain

import (
	"strings"

	dErrors "leadhub/pkg/domain-errors"
)

// IdentifierField names one of the fields used for identity matching.
// Invariant: the value is one of the three supported identifiers.
//
// Usage: construct via ParseIdentifierField at trust boundaries; direct
// casting bypasses validation.
type IdentifierField string

const (
	IdentifierEmail  IdentifierField = "email"
	IdentifierPhone  IdentifierField = "phone_number"
	IdentifierAadhar IdentifierField = "aadhar_number"
)

// AllIdentifiers lists the identifiers in matching priority order.
var AllIdentifiers = []IdentifierField{IdentifierEmail, IdentifierPhone, IdentifierAadhar}

// identifierAliases accepts the short names operators type in product config.
var identifierAliases = map[string]IdentifierField{
	"email":         IdentifierEmail,
	"phone_number":  IdentifierPhone,
	"phone":         IdentifierPhone,
	"aadhar_number": IdentifierAadhar,
	"aadhar":        IdentifierAadhar,
}

// ParseIdentifierField accepts a canonical identifier name or its short alias.
func ParseIdentifierField(s string) (IdentifierField, error) {
	f, ok := identifierAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			"unknown identifier field '"+s+"' (expected email, phone_number or aadhar_number)")
	}
	return f, nil
}

func (f IdentifierField) String() string { return string(f) }
