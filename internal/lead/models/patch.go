package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"leadhub/internal/identity"
	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
)

// Employment types accepted for EmploymentType.
const (
	EmploymentSalaried     = "SALARIED"
	EmploymentSelfEmployed = "SELF_EMPLOYED"
	EmploymentOther        = "OTHER"
)

// ErrMissingIdentifier is returned when a lead would end up with no identifier.
var ErrMissingIdentifier = dErrors.New(dErrors.CodeValidation,
	"At least one identifier (phone_number, email, or aadhar_number) is required")

// LeadPatch lists every mutable lead field. A nil field is left untouched.
// For the string fields an empty value clears the field.
type LeadPatch struct {
	Name           *string          `json:"name,omitempty"`
	Email          *string          `json:"email,omitempty"`
	PhoneNumber    *string          `json:"phone_number,omitempty"`
	AadharNumber   *string          `json:"aadhar_number,omitempty"`
	SourceID       *string          `json:"sourceId,omitempty"`
	PID            *string          `json:"pId,omitempty"`
	LeadScore      *float64         `json:"leadScore,omitempty"`
	ScoreReason    *string          `json:"scoreReason,omitempty"`
	Income         *decimal.Decimal `json:"income,omitempty"`
	CreditScore    *int             `json:"creditScore,omitempty"`
	EmploymentType *string          `json:"employmentType,omitempty"`
	LoanAmount     *decimal.Decimal `json:"loanAmount,omitempty"`
	Converted      *bool            `json:"converted,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p LeadPatch) IsEmpty() bool {
	return p == LeadPatch{}
}

// Normalized returns a copy with identifiers normalized and codes parsed.
// A non-blank identifier that fails normalization is a validation error.
func (p LeadPatch) Normalized() (LeadPatch, error) {
	out := p
	var err error
	if out.Name, err = normalizeOptional(p.Name, identity.NormalizeName, ""); err != nil {
		return LeadPatch{}, err
	}
	if out.Email, err = normalizeOptional(p.Email, identity.NormalizeEmail, "Invalid email format"); err != nil {
		return LeadPatch{}, err
	}
	if out.PhoneNumber, err = normalizeOptional(p.PhoneNumber, identity.NormalizePhone, "Invalid phone number"); err != nil {
		return LeadPatch{}, err
	}
	if out.AadharNumber, err = normalizeOptional(p.AadharNumber, identity.NormalizeAadhar, "Invalid aadhar number"); err != nil {
		return LeadPatch{}, err
	}
	if p.EmploymentType != nil && *p.EmploymentType != "" {
		et, err := ParseEmploymentType(*p.EmploymentType)
		if err != nil {
			return LeadPatch{}, err
		}
		out.EmploymentType = &et
	}
	if p.SourceID != nil {
		sid, err := id.ParseSourceID(*p.SourceID)
		if err != nil {
			return LeadPatch{}, err
		}
		s := string(sid)
		out.SourceID = &s
	}
	if p.PID != nil {
		pid, err := id.ParseProductID(*p.PID)
		if err != nil {
			return LeadPatch{}, err
		}
		s := string(pid)
		out.PID = &s
	}
	return out, nil
}

// Apply writes the patch onto l. Changing the source or product also adds
// it to the seen sets so the sets stay a superset of every association.
func (p LeadPatch) Apply(l *Lead) error {
	next := l.Clone()
	if p.Name != nil {
		next.Name = emptyToNil(p.Name)
	}
	if p.Email != nil {
		next.Email = emptyToNil(p.Email)
	}
	if p.PhoneNumber != nil {
		next.PhoneNumber = emptyToNil(p.PhoneNumber)
	}
	if p.AadharNumber != nil {
		next.AadharNumber = emptyToNil(p.AadharNumber)
	}
	if p.SourceID != nil {
		next.SourceID = id.SourceID(*p.SourceID)
	}
	if p.PID != nil {
		next.PID = id.ProductID(*p.PID)
	}
	if p.SourceID != nil || p.PID != nil {
		next.Observe(next.SourceID, next.PID)
	}
	if p.LeadScore != nil {
		next.LeadScore = p.LeadScore
	}
	if p.ScoreReason != nil {
		next.ScoreReason = emptyToNil(p.ScoreReason)
	}
	if p.Income != nil {
		next.Income = p.Income
	}
	if p.CreditScore != nil {
		next.CreditScore = p.CreditScore
	}
	if p.EmploymentType != nil {
		next.EmploymentType = emptyToNil(p.EmploymentType)
	}
	if p.LoanAmount != nil {
		next.LoanAmount = p.LoanAmount
	}
	if p.Converted != nil {
		next.Converted = p.Converted
	}

	if !next.HasIdentifier() {
		return ErrMissingIdentifier
	}
	*l = *next
	return nil
}

// ParseEmploymentType upper-cases raw and checks it against the allowed set.
func ParseEmploymentType(raw string) (string, error) {
	et := strings.ToUpper(strings.TrimSpace(raw))
	switch et {
	case EmploymentSalaried, EmploymentSelfEmployed, EmploymentOther:
		return et, nil
	}
	return "", dErrors.New(dErrors.CodeValidation,
		"Invalid employmentType. Allowed values: SALARIED, SELF_EMPLOYED, OTHER")
}

func normalizeOptional(v *string, normalize func(string) *string, reason string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if *v == "" {
		empty := ""
		return &empty, nil
	}
	normalized := normalize(*v)
	if normalized == nil {
		if reason == "" {
			empty := ""
			return &empty, nil
		}
		return nil, dErrors.New(dErrors.CodeValidation, reason)
	}
	return normalized, nil
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	c := *v
	return &c
}
