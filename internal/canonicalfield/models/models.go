// Package models defines the canonical upload schema: the named, typed
// columns an upload file is checked against.
package models

import (
	"strings"
	"time"

	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/platform/validation"
)

// FieldType is the value type a canonical field accepts.
type FieldType string

const (
	TypeString  FieldType = "String"
	TypeNumber  FieldType = "Number"
	TypeDate    FieldType = "Date"
	TypeBoolean FieldType = "Boolean"
	TypeEmail   FieldType = "Email"
	TypePhone   FieldType = "Phone"
)

// IsKnown reports whether t is one of the supported types.
func (t FieldType) IsKnown() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeBoolean, TypeEmail, TypePhone:
		return true
	}
	return false
}

// CanonicalField is one column of the upload schema. Fields are immutable
// once created.
type CanonicalField struct {
	FieldName   string    `json:"fieldName" yaml:"field_name"`
	DisplayName string    `json:"displayName,omitempty" yaml:"display_name"`
	FieldType   FieldType `json:"fieldType" yaml:"field_type"`
	IsActive    bool      `json:"isActive" yaml:"is_active"`
	IsRequired  bool      `json:"isRequired" yaml:"is_required"`
	Version     string    `json:"version,omitempty" yaml:"version"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

// Active returns the active fields of fields, keeping their order.
func Active(fields []*CanonicalField) []*CanonicalField {
	out := make([]*CanonicalField, 0, len(fields))
	for _, f := range fields {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out
}

// CreateRequest is the body of POST /api/canonical-fields.
type CreateRequest struct {
	FieldName   string    `json:"field_name" validate:"required,max=64"`
	DisplayName string    `json:"display_name" validate:"max=200"`
	FieldType   FieldType `json:"field_type"`
	IsActive    *bool     `json:"is_active"`
	IsRequired  *bool     `json:"is_required"`
	Version     string    `json:"version"`
}

// Normalize lower-cases the field name.
func (r *CreateRequest) Normalize() {
	if r == nil {
		return
	}
	r.FieldName = strings.ToLower(strings.TrimSpace(r.FieldName))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.Version = strings.TrimSpace(r.Version)
}

// Validate checks the request. Email and Phone are reserved for identity
// fields loaded from seed data and cannot be created through the API.
func (r *CreateRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.FieldType == "" {
		return dErrors.New(dErrors.CodeValidation, "Field type is required")
	}
	switch r.FieldType {
	case TypeString, TypeNumber, TypeDate, TypeBoolean:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation,
		"Field type must be one of: String, Number, Date, Boolean. Email and Phone are not allowed.")
}

// Field builds the stored field. Active defaults to true, required to false.
func (r *CreateRequest) Field(now time.Time) *CanonicalField {
	f := &CanonicalField{
		FieldName:   r.FieldName,
		DisplayName: r.DisplayName,
		FieldType:   r.FieldType,
		IsActive:    true,
		Version:     r.Version,
		CreatedAt:   now,
	}
	if r.IsActive != nil {
		f.IsActive = *r.IsActive
	}
	if r.IsRequired != nil {
		f.IsRequired = *r.IsRequired
	}
	if f.Version == "" {
		f.Version = "v1"
	}
	return f
}
