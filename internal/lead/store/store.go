// Package store persists leads. InMemory serves tests and local runs;
// PostgresStore is the durable implementation.
package store

import (
	"errors"

	"leadhub/internal/lead/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errLeadRequired = errors.New("lead with a lead id is required")

// window converts a 1-based page filter into an offset and limit.
func window(filter models.ListFilter) (offset, limit int) {
	limit = filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	page := max(filter.Page, 1)
	return (page - 1) * limit, limit
}
