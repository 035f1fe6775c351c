// Package domain holds the typed identifiers shared by every lead module.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "leadhub/pkg/domain-errors"
)

// LeadID is the stable external identifier of a lead.
// Invariant: never the nil UUID once parsed or generated.
type LeadID uuid.UUID

// NewLeadID allocates a fresh lead identifier.
func NewLeadID() LeadID { return LeadID(uuid.New()) }

// ParseLeadID parses external input into a LeadID.
func ParseLeadID(s string) (LeadID, error) {
	if s == "" {
		return LeadID{}, dErrors.New(dErrors.CodeInvalidInput, "lead id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return LeadID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid lead id")
	}
	if parsed == uuid.Nil {
		return LeadID{}, dErrors.New(dErrors.CodeInvalidInput, "lead id must not be nil")
	}
	return LeadID(parsed), nil
}

func (id LeadID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero value.
func (id LeadID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText encodes the id as its canonical UUID string.
func (id LeadID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts the canonical UUID string form.
func (id *LeadID) UnmarshalText(b []byte) error {
	parsed, err := ParseLeadID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

const maxCodeLength = 64

var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_\-]*$`)

// ProductID identifies a product. Stored upper-case.
type ProductID string

// SourceID identifies a lead source. Stored upper-case.
type SourceID string

// ParseProductID trims and upper-cases s and checks the code alphabet.
func ParseProductID(s string) (ProductID, error) {
	code, err := parseCode(s, "pId")
	return ProductID(code), err
}

// ParseSourceID trims and upper-cases s and checks the code alphabet.
func ParseSourceID(s string) (SourceID, error) {
	code, err := parseCode(s, "sourceId")
	return SourceID(code), err
}

func (p ProductID) String() string { return string(p) }
func (s SourceID) String() string  { return string(s) }

func parseCode(s, field string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	if len(code) > maxCodeLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" is too long")
	}
	if !codePattern.MatchString(code) {
		return "", dErrors.New(dErrors.CodeInvalidInput, field+" may contain only letters, digits, '_' and '-'")
	}
	return code, nil
}
