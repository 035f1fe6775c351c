package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "leadhub/pkg/domain-errors"
)

func TestParseCSV(t *testing.T) {
	t.Run("keys cells by trimmed header and records file lines", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("\xEF\xBB\xBFname, phone\nRaj , 9876543210\n\n,,\n\"Kumar, R\",+91-9876543210\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "phone"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 2, table.Rows[0].Line)
		assert.Equal(t, map[string]string{"name": "Raj", "phone": "9876543210"}, table.Rows[0].Values)
		assert.Equal(t, 5, table.Rows[1].Line)
		assert.Equal(t, "Kumar, R", table.Rows[1].Values["name"])
	})

	t.Run("pads short rows", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("name,email,phone\nRaj\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"name": "Raj", "email": "", "phone": ""}, table.Rows[0].Values)
	})

	t.Run("header only yields no rows", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("name,phone\n"))
		require.NoError(t, err)
		assert.Empty(t, table.Rows)
	})

	t.Run("empty input is an error", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""))
		require.Error(t, err)
	})

	t.Run("unterminated quote is an error", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("name\n\"Raj\n"))
		require.Error(t, err)
	})
}

func TestResultFailCapsReportedRows(t *testing.T) {
	r := &Result{}
	for i := range MaxReportedRows + 5 {
		r.Fail(NewRowError(i+2, nil, "bad", "worse"))
	}
	assert.Equal(t, MaxReportedRows+5, r.FailedCount)
	assert.Len(t, r.FailedRows, MaxReportedRows)
	assert.Equal(t, "bad; worse", r.FailedRows[0].Reason)
}

func TestRejectIsBadRequest(t *testing.T) {
	rows := make([]RowError, MaxReportedRows+1)
	err := Reject("nope", rows)

	assert.Len(t, err.Rows, MaxReportedRows)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	assert.Equal(t, "nope", dErrors.Message(err))
}
