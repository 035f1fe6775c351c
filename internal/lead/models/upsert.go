package models

import (
	"leadhub/internal/identity"
	id "leadhub/pkg/domain"
)

// Action reports what an upsert did.
type Action string

const (
	ActionInserted Action = "inserted"
	ActionMerged   Action = "merged"
)

// UpsertInput is one normalized row plus where it came from.
type UpsertInput struct {
	Row      identity.Row
	PID      id.ProductID
	SourceID id.SourceID
	RawRow   map[string]any
}

// UpsertResult is the outcome of one upsert.
type UpsertResult struct {
	Action Action `json:"action"`
	Lead   *Lead  `json:"lead"`
}

// ListFilter narrows a lead listing. Zero values mean no filter.
type ListFilter struct {
	PID      id.ProductID
	SourceID id.SourceID
	Page     int
	Limit    int
}

// Page is one page of leads plus the total match count.
type Page struct {
	Leads      []*Lead `json:"leads"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
