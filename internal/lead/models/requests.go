package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"leadhub/pkg/platform/validation"
)

// CreateLeadRequest is the body of POST /api/leads.
type CreateLeadRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=200"`
	Email          *string          `json:"email" validate:"omitempty,max=320"`
	PhoneNumber    *string          `json:"phone_number" validate:"omitempty,max=32"`
	AadharNumber   *string          `json:"aadhar_number" validate:"omitempty,max=32"`
	PID            string           `json:"pId" validate:"omitempty,max=64"`
	SourceID       string           `json:"sourceId" validate:"omitempty,max=64"`
	Income         *decimal.Decimal `json:"income"`
	CreditScore    *int             `json:"creditScore" validate:"omitempty,min=0,max=900"`
	EmploymentType *string          `json:"employmentType"`
	LoanAmount     *decimal.Decimal `json:"loanAmount"`
	Converted      *bool            `json:"converted"`
}

// Normalize trims free-text fields and upper-cases the codes.
func (r *CreateLeadRequest) Normalize() {
	if r == nil {
		return
	}
	r.PID = strings.ToUpper(strings.TrimSpace(r.PID))
	r.SourceID = strings.ToUpper(strings.TrimSpace(r.SourceID))
	for _, f := range []**string{&r.Name, &r.Email, &r.PhoneNumber, &r.AadharNumber, &r.EmploymentType} {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			*f = nil
			continue
		}
		*f = &v
	}
}

// Validate checks the request shape. Identifier formats are checked by the
// service after normalization.
func (r *CreateLeadRequest) Validate() error {
	if r.Email == nil && r.PhoneNumber == nil && r.AadharNumber == nil {
		return ErrMissingIdentifier
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.EmploymentType != nil {
		if _, err := ParseEmploymentType(*r.EmploymentType); err != nil {
			return err
		}
	}
	return nil
}

// Attributes returns the optional non-identity fields as a patch.
func (r *CreateLeadRequest) Attributes() LeadPatch {
	return LeadPatch{
		Income:         r.Income,
		CreditScore:    r.CreditScore,
		EmploymentType: r.EmploymentType,
		LoanAmount:     r.LoanAmount,
		Converted:      r.Converted,
	}
}

// RawData is the provenance snapshot stored for a lead created by API call.
func (r *CreateLeadRequest) RawData() map[string]any {
	raw := map[string]any{}
	putIfSet(raw, "name", r.Name)
	putIfSet(raw, "email", r.Email)
	putIfSet(raw, "phone_number", r.PhoneNumber)
	putIfSet(raw, "aadhar_number", r.AadharNumber)
	if r.PID != "" {
		raw["pId"] = r.PID
	}
	if r.SourceID != "" {
		raw["sourceId"] = r.SourceID
	}
	return raw
}

// HistoryResponse is the provenance view of one lead.
type HistoryResponse struct {
	LeadID       string        `json:"lead_id"`
	MergedFrom   []MergeRecord `json:"merged_from"`
	SourcesSeen  []string      `json:"sources_seen"`
	ProductsSeen []string      `json:"products_seen"`
	CreatedAt    *time.Time    `json:"created_at"`
}

// History builds the provenance view of l. A zero creation time is null.
func History(l *Lead) *HistoryResponse {
	resp := &HistoryResponse{
		LeadID:       l.LeadID.String(),
		MergedFrom:   l.MergedFrom,
		SourcesSeen:  l.SourcesSeen,
		ProductsSeen: l.ProductsSeen,
	}
	if !l.CreatedAt.IsZero() {
		created := l.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
