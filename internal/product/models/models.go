// Package models defines products, the sources that feed them, and the
// per-product identity policy used by deduplication.
package models

import (
	"fmt"
	"strings"
	"time"

	id "leadhub/pkg/domain"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/validation"
)

// Product is one bank product leads are collected for.
//
// DeduplicationFields is an ordered subset of the identifier fields. Empty
// means every identifier takes part in matching.
type Product struct {
	PID                 id.ProductID         `json:"pId"`
	PName               string               `json:"pName"`
	DeduplicationFields []id.IdentifierField `json:"deduplicationFields"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with p.
func (p *Product) Clone() *Product {
	c := *p
	c.DeduplicationFields = append([]id.IdentifierField(nil), p.DeduplicationFields...)
	return &c
}

// Source is one channel leads arrive through. Columns is the header list the
// source is expected to send and is informational only.
type Source struct {
	SourceID   id.SourceID  `json:"sourceId"`
	SourceName string       `json:"sourceName"`
	PID        id.ProductID `json:"pId"`
	Columns    []string     `json:"columns"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with s.
func (s *Source) Clone() *Source {
	c := *s
	c.Columns = append([]string(nil), s.Columns...)
	return &c
}

// ParseDeduplicationFields resolves raw field names, dropping duplicates and
// keeping the first-seen order. Unknown names fail the whole list.
func ParseDeduplicationFields(raw []string) ([]id.IdentifierField, error) {
	fields := make([]id.IdentifierField, 0, len(raw))
	seen := make(map[id.IdentifierField]bool, len(raw))
	var unknown []string
	for _, name := range raw {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := id.ParseIdentifierField(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	if len(unknown) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf(
			"Invalid deduplicationFields: %s. Allowed values: email, phone_number, aadhar_number",
			strings.Join(unknown, ", ")))
	}
	return fields, nil
}

// CreateProductRequest is the body of POST /api/products.
type CreateProductRequest struct {
	PID                 string   `json:"pId" validate:"required,max=64"`
	PName               string   `json:"pName" validate:"required,max=200"`
	DeduplicationFields []string `json:"deduplicationFields"`
}

func (r *CreateProductRequest) Normalize() {
	if r == nil {
		return
	}
	r.PID = strings.ToUpper(strings.TrimSpace(r.PID))
	r.PName = strings.TrimSpace(r.PName)
}

func (r *CreateProductRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if _, err := id.ParseProductID(r.PID); err != nil {
		return err
	}
	_, err := ParseDeduplicationFields(r.DeduplicationFields)
	return err
}

// UpdateProductRequest is the body of PUT /api/products/{pId}. Nil fields are
// left unchanged.
type UpdateProductRequest struct {
	PName               *string  `json:"pName" validate:"omitempty,min=1,max=200"`
	DeduplicationFields []string `json:"deduplicationFields"`
}

func (r *UpdateProductRequest) Normalize() {
	if r == nil || r.PName == nil {
		return
	}
	name := strings.TrimSpace(*r.PName)
	r.PName = &name
}

func (r *UpdateProductRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	_, err := ParseDeduplicationFields(r.DeduplicationFields)
	return err
}

// CreateSourceRequest is the body of POST /api/sources.
type CreateSourceRequest struct {
	SourceID   string   `json:"sourceId" validate:"required,max=64"`
	SourceName string   `json:"sourceName" validate:"required,max=200"`
	PID        string   `json:"pId" validate:"required,max=64"`
	Columns    []string `json:"columns"`
}

func (r *CreateSourceRequest) Normalize() {
	if r == nil {
		return
	}
	r.SourceID = strings.ToUpper(strings.TrimSpace(r.SourceID))
	r.SourceName = strings.TrimSpace(r.SourceName)
	r.PID = strings.ToUpper(strings.TrimSpace(r.PID))
}

func (r *CreateSourceRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if _, err := id.ParseSourceID(r.SourceID); err != nil {
		return err
	}
	_, err := id.ParseProductID(r.PID)
	return err
}

// UpdateSourceRequest is the body of PUT /api/sources/{sourceId}.
type UpdateSourceRequest struct {
	SourceName *string  `json:"sourceName" validate:"omitempty,min=1,max=200"`
	PID        *string  `json:"pId" validate:"omitempty,max=64"`
	Columns    []string `json:"columns"`
}

func (r *UpdateSourceRequest) Normalize() {
	if r == nil {
		return
	}
	if r.SourceName != nil {
		name := strings.TrimSpace(*r.SourceName)
		r.SourceName = &name
	}
	if r.PID != nil {
		pID := strings.ToUpper(strings.TrimSpace(*r.PID))
		r.PID = &pID
	}
}

func (r *UpdateSourceRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.PID != nil {
		if _, err := id.ParseProductID(*r.PID); err != nil {
			return err
		}
	}
	return nil
}
