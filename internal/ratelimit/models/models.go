package models

import "time"

// EndpointClass groups endpoints that share a limit.
type EndpointClass string

const (
	// ClassUpload is CSV ingestion, the most expensive call.
	ClassUpload EndpointClass = "upload"
	// ClassRun covers dedup runs and product consolidation.
	ClassRun   EndpointClass = "dedup_run"
	ClassWrite EndpointClass = "write"
	ClassRead  EndpointClass = "read"
)

// Limit allows Requests per sliding Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits are the per client limits applied when none are configured.
func DefaultLimits() map[EndpointClass]Limit {
	return map[EndpointClass]Limit{
		ClassUpload: {Requests: 20, Window: time.Minute},
		ClassRun:    {Requests: 10, Window: time.Minute},
		ClassWrite:  {Requests: 120, Window: time.Minute},
		ClassRead:   {Requests: 600, Window: time.Minute},
	}
}

// RateLimitResult is the outcome of one check.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is in seconds and only set when not allowed.
	RetryAfter int `json:"retry_after,omitempty"`
}

type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
