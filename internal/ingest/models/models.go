package models

import (
	"strings"

	dedupmodels "leadhub/internal/dedup/models"
	dErrors "leadhub/pkg/domain-errors"
)

// MaxReportedRows caps the failed rows returned in one upload response.
const MaxReportedRows = 100

// Upload is one parsed file bound for a product and source. PID and SourceID
// are raw request values.
type Upload struct {
	PID      string
	SourceID string
	Table    *Table
}

// RowError describes a row that was not stored. RowNumber is the line of the
// row in the file, counting the header as line 1.
type RowError struct {
	RowNumber int               `json:"rowNumber"`
	Reason    string            `json:"reason"`
	RawInput  map[string]string `json:"rawInput"`
}

// NewRowError joins reasons the way upload reports show them.
func NewRowError(rowNumber int, raw map[string]string, reasons ...string) RowError {
	return RowError{RowNumber: rowNumber, Reason: strings.Join(reasons, "; "), RawInput: raw}
}

// Result summarizes an upload. Exactly one of Deduplication,
// DeduplicationError and DeduplicationQueued is set once the rows are in.
type Result struct {
	TotalRows           int                  `json:"totalRows"`
	InsertedCount       int                  `json:"insertedCount"`
	MergedCount         int                  `json:"mergedCount"`
	FailedCount         int                  `json:"failedCount"`
	FailedRows          []RowError           `json:"failedRows"`
	Deduplication       *dedupmodels.Summary `json:"deduplication,omitempty"`
	DeduplicationError  string               `json:"deduplicationError,omitempty"`
	DeduplicationQueued bool                 `json:"deduplicationQueued,omitempty"`
}

// Fail records a failed row, keeping at most MaxReportedRows of them.
func (r *Result) Fail(rowErr RowError) {
	r.FailedCount++
	if len(r.FailedRows) < MaxReportedRows {
		r.FailedRows = append(r.FailedRows, rowErr)
	}
}

// RejectedError is returned when the whole file is refused. Rows carries the
// per-row problems that led to it, if any.
type RejectedError struct {
	Message string
	Rows    []RowError
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Unwrap exposes the error as a bad request so HTTP mapping stays uniform.
func (e *RejectedError) Unwrap() error {
	return dErrors.New(dErrors.CodeBadRequest, e.Message)
}

// Reject builds a RejectedError, capping the reported rows.
func Reject(message string, rows []RowError) *RejectedError {
	if len(rows) > MaxReportedRows {
		rows = rows[:MaxReportedRows]
	}
	return &RejectedError{Message: message, Rows: rows}
}
