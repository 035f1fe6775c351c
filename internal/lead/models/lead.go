package models

import (
	"time"

	"github.com/shopspring/decimal"

	"leadhub/internal/identity"
	id "leadhub/pkg/domain"
	pstrings "leadhub/pkg/platform/strings"
)

// Lead is one person observed across sources and products.
//
// Invariants:
//   - LeadID is assigned once and never changes
//   - at least one of Email, PhoneNumber, AadharNumber is set at creation
//   - SourcesSeen and ProductsSeen only grow
//   - MergedFrom is append-only and keeps its order
type Lead struct {
	LeadID       id.LeadID    `json:"leadId"`
	Name         *string      `json:"name"`
	Email        *string      `json:"email"`
	PhoneNumber  *string      `json:"phone_number"`
	AadharNumber *string      `json:"aadhar_number"`
	SourceID     id.SourceID  `json:"sourceId"`
	PID          id.ProductID `json:"pId"`

	SourcesSeen  []string      `json:"sourcesSeen"`
	ProductsSeen []string      `json:"productsSeen"`
	MergedFrom   []MergeRecord `json:"mergedFrom"`

	LeadScore      *float64         `json:"leadScore,omitempty"`
	ScoreReason    *string          `json:"scoreReason,omitempty"`
	Income         *decimal.Decimal `json:"income,omitempty"`
	CreditScore    *int             `json:"creditScore,omitempty"`
	EmploymentType *string          `json:"employmentType,omitempty"`
	LoanAmount     *decimal.Decimal `json:"loanAmount,omitempty"`
	Converted      *bool            `json:"converted,omitempty"`

	// CreatedAt is zero for records imported without a creation time; such
	// leads sort after every dated lead when choosing a merge survivor.
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// MergeRecord is one entry of a lead's provenance trail.
type MergeRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	SourceID  id.SourceID    `json:"sourceId"`
	PID       id.ProductID   `json:"pId"`
	RawData   map[string]any `json:"rawData"`
}

// NewLead builds a lead from a normalized row. It fails the identifier gate
// when the row carries no identifier.
func NewLead(leadID id.LeadID, row identity.Row, sourceID id.SourceID, pID id.ProductID, raw map[string]any, now time.Time) (*Lead, error) {
	if !row.HasAnyIdentifier() {
		return nil, ErrMissingIdentifier
	}
	return &Lead{
		LeadID:       leadID,
		Name:         row.Name,
		Email:        row.Email,
		PhoneNumber:  row.Phone,
		AadharNumber: row.Aadhar,
		SourceID:     sourceID,
		PID:          pID,
		SourcesSeen:  pstrings.AppendMissing(nil, string(sourceID)),
		ProductsSeen: pstrings.AppendMissing(nil, string(pID)),
		MergedFrom: []MergeRecord{{
			Timestamp: now,
			SourceID:  sourceID,
			PID:       pID,
			RawData:   raw,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasIdentifier reports whether any identity field is set.
func (l *Lead) HasIdentifier() bool {
	return nonEmpty(l.Email) || nonEmpty(l.PhoneNumber) || nonEmpty(l.AadharNumber)
}

// Identifier returns the value of an identifier field, or nil when empty.
func (l *Lead) Identifier(field id.IdentifierField) *string {
	var v *string
	switch field {
	case id.IdentifierEmail:
		v = l.Email
	case id.IdentifierPhone:
		v = l.PhoneNumber
	case id.IdentifierAadhar:
		v = l.AadharNumber
	}
	if !nonEmpty(v) {
		return nil
	}
	return v
}

// FillEmpty copies each identity value into the lead only where the lead's
// field is empty. Populated fields are never overwritten.
func (l *Lead) FillEmpty(name, email, phone, aadhar *string) {
	l.Name = fill(l.Name, name)
	l.Email = fill(l.Email, email)
	l.PhoneNumber = fill(l.PhoneNumber, phone)
	l.AadharNumber = fill(l.AadharNumber, aadhar)
}

// Observe adds a source and product to the seen sets.
func (l *Lead) Observe(sourceID id.SourceID, pID id.ProductID) {
	l.SourcesSeen = pstrings.AppendMissing(l.SourcesSeen, string(sourceID))
	l.ProductsSeen = pstrings.AppendMissing(l.ProductsSeen, string(pID))
}

// AppendHistory adds a provenance record to the end of MergedFrom.
func (l *Lead) AppendHistory(rec MergeRecord) {
	l.MergedFrom = append(l.MergedFrom, rec)
}

// Touch stamps UpdatedAt.
func (l *Lead) Touch(now time.Time) {
	l.UpdatedAt = now
}

// Snapshot captures the identity and association fields of the lead as
// provenance raw data.
func (l *Lead) Snapshot() map[string]any {
	snap := map[string]any{
		"leadId":       l.LeadID.String(),
		"sourceId":     string(l.SourceID),
		"pId":          string(l.PID),
		"sourcesSeen":  append([]string(nil), l.SourcesSeen...),
		"productsSeen": append([]string(nil), l.ProductsSeen...),
	}
	putIfSet(snap, identity.FieldName, l.Name)
	putIfSet(snap, identity.FieldEmail, l.Email)
	putIfSet(snap, identity.FieldPhone, l.PhoneNumber)
	putIfSet(snap, identity.FieldAadhar, l.AadharNumber)
	if !l.CreatedAt.IsZero() {
		snap["createdAt"] = l.CreatedAt
	}
	return snap
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	c.Name = clonePtr(l.Name)
	c.Email = clonePtr(l.Email)
	c.PhoneNumber = clonePtr(l.PhoneNumber)
	c.AadharNumber = clonePtr(l.AadharNumber)
	c.LeadScore = clonePtr(l.LeadScore)
	c.ScoreReason = clonePtr(l.ScoreReason)
	c.Income = clonePtr(l.Income)
	c.CreditScore = clonePtr(l.CreditScore)
	c.EmploymentType = clonePtr(l.EmploymentType)
	c.LoanAmount = clonePtr(l.LoanAmount)
	c.Converted = clonePtr(l.Converted)
	c.SourcesSeen = append([]string(nil), l.SourcesSeen...)
	c.ProductsSeen = append([]string(nil), l.ProductsSeen...)
	c.MergedFrom = make([]MergeRecord, len(l.MergedFrom))
	for i, rec := range l.MergedFrom {
		raw := make(map[string]any, len(rec.RawData))
		for k, v := range rec.RawData {
			raw[k] = v
		}
		rec.RawData = raw
		c.MergedFrom[i] = rec
	}
	return &c
}

// RawRow converts an upload row into provenance raw data.
func RawRow(row map[string]string) map[string]any {
	raw := make(map[string]any, len(row))
	for k, v := range row {
		raw[k] = v
	}
	return raw
}

func fill(current, candidate *string) *string {
	if nonEmpty(current) || !nonEmpty(candidate) {
		return current
	}
	v := *candidate
	return &v
}

func nonEmpty(v *string) bool {
	return v != nil && *v != ""
}

func putIfSet(m map[string]any, key string, v *string) {
	if nonEmpty(v) {
		m[key] = *v
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
