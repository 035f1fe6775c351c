package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Name":            FieldName,
		" Full Name ":     FieldName,
		"customer_name":   FieldName,
		"MOBILE":          FieldPhone,
		"Contact  Number": FieldPhone,
		"phone":           FieldPhone,
		"Email ID":        FieldEmail,
		"mail":            FieldEmail,
		"E_Mail":          FieldEmail,
		"Aadhaar":         FieldAadhar,
		"aadhar no":       FieldAadhar,
	}
	for raw, want := range cases {
		got, ok := NormalizeHeader(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := NormalizeHeader("income")
	assert.False(t, ok)
	assert.Equal(t, "loan_amount", CleanHeader("  Loan \t Amount "))
}

func TestNormalizeHeaders(t *testing.T) {
	mapping := NormalizeHeaders([]string{"Full Name", "Mobile", "City"})
	assert.Equal(t, map[string]string{"Full Name": FieldName, "Mobile": FieldPhone}, mapping)
}

func TestNormalizePhone(t *testing.T) {
	t.Run("strips country code from 12 digit numbers", func(t *testing.T) {
		for _, raw := range []string{"919876543210", "+91-9876543210", "+91 98765 43210", "(91) 9876-543-210"} {
			got := NormalizePhone(raw)
			require.NotNil(t, got, raw)
			assert.Equal(t, "9876543210", *got, raw)
		}
	})

	t.Run("keeps last 10 digits of other long numbers", func(t *testing.T) {
		got := NormalizePhone("0019876543210")
		require.NotNil(t, got)
		assert.Equal(t, "9876543210", *got)

		got = NormalizePhone("929876543210")
		require.NotNil(t, got)
		assert.Equal(t, "9876543210", *got)
	})

	t.Run("accepts exactly 10 digits", func(t *testing.T) {
		got := NormalizePhone("98765 43210")
		require.NotNil(t, got)
		assert.Equal(t, "9876543210", *got)
	})

	t.Run("rejects fewer than 10 digits", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "987654321", "+91 98765"} {
			assert.Nil(t, NormalizePhone(raw), raw)
		}
	})

	t.Run("result is always 10 digits", func(t *testing.T) {
		for _, raw := range []string{"12345678901234567890", "91 91 91 91 91 91", "9999999999"} {
			got := NormalizePhone(raw)
			require.NotNil(t, got, raw)
			assert.Len(t, *got, 10, raw)
		}
	})
}

func TestNormalizeEmail(t *testing.T) {
	t.Run("trims and lower-cases", func(t *testing.T) {
		got := NormalizeEmail("  Raj.Kumar@Example.COM ")
		require.NotNil(t, got)
		assert.Equal(t, "raj.kumar@example.com", *got)
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, raw := range []string{"", "raj", "raj@", "raj@example", "raj kumar@example.com", "raj@@example.com", "@example.com"} {
			assert.Nil(t, NormalizeEmail(raw), raw)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		for _, raw := range []string{"A@B.CO", " x.y@z.in ", "MiXeD@Case.Org"} {
			once := NormalizeEmail(raw)
			require.NotNil(t, once, raw)
			twice := NormalizeEmail(*once)
			require.NotNil(t, twice, raw)
			assert.Equal(t, *once, *twice, raw)
		}
	})
}

func TestNormalizeAadhar(t *testing.T) {
	got := NormalizeAadhar("1234 5678 9012")
	require.NotNil(t, got)
	assert.Equal(t, "123456789012", *got)

	assert.Nil(t, NormalizeAadhar("12345678901"))
	assert.Nil(t, NormalizeAadhar("1234567890123"))
	assert.Nil(t, NormalizeAadhar(""))
}

func TestNormalizeName(t *testing.T) {
	got := NormalizeName("  Raj  ")
	require.NotNil(t, got)
	assert.Equal(t, "Raj", *got)
	assert.Nil(t, NormalizeName("   "))
}

func TestNormalizeRow(t *testing.T) {
	headers := []string{"Full Name", "Mobile", "Email", "Aadhar", "City"}
	mapping := NormalizeHeaders(headers)

	t.Run("normalizes mapped columns and ignores the rest", func(t *testing.T) {
		row := NormalizeRow(map[string]string{
			"Full Name": " Raj ",
			"Mobile":    "+91-9876543210",
			"Email":     "RAJ@EXAMPLE.COM",
			"Aadhar":    "1234-5678-9012",
			"City":      "Pune",
		}, mapping)

		require.NotNil(t, row.Name)
		assert.Equal(t, "Raj", *row.Name)
		assert.Equal(t, "9876543210", *row.Phone)
		assert.Equal(t, "raj@example.com", *row.Email)
		assert.Equal(t, "123456789012", *row.Aadhar)
		assert.Empty(t, row.Rejected)
		assert.True(t, row.HasAnyIdentifier())
	})

	t.Run("drops failed identifiers without blocking the row", func(t *testing.T) {
		row := NormalizeRow(map[string]string{
			"Mobile": "12345",
			"Email":  "raj@example.com",
			"Aadhar": "",
		}, mapping)

		assert.Nil(t, row.Phone)
		assert.Nil(t, row.Aadhar)
		require.NotNil(t, row.Email)
		assert.Equal(t, []string{FieldPhone}, row.Rejected)
		assert.Equal(t, []string{"Invalid phone number"}, row.Issues())
		assert.True(t, row.HasAnyIdentifier())
	})

	t.Run("row with no surviving identifier fails the gate", func(t *testing.T) {
		row := NormalizeRow(map[string]string{
			"Full Name": "Raj",
			"Email":     "not-an-email",
			"Aadhar":    "12",
		}, mapping)

		assert.False(t, row.HasAnyIdentifier())
		assert.Equal(t, []string{"Invalid email format", "Invalid aadhar number"}, row.Issues())
	})

	t.Run("a valid duplicate column clears the rejection", func(t *testing.T) {
		m := NormalizeHeaders([]string{"email", "mail"})
		row := NormalizeRow(map[string]string{"email": "bad", "mail": "ok@example.com"}, m)

		require.NotNil(t, row.Email)
		assert.Equal(t, "ok@example.com", *row.Email)
		assert.Empty(t, row.Rejected)
	})
}
