package ncf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceiptNumber(t *testing.T) {
	assert.Equal(t, "B0100000001", GenerateReceiptNumber("credit_fiscal", 1))
	assert.Equal(t, "B1500012345", GenerateReceiptNumber("government", 12345))
	assert.Equal(t, "B0299999999", GenerateReceiptNumber("consumer", 99999999))
}

func TestGenerateReceiptNumber_UnknownKeyFallsBackToConsumer(t *testing.T) {
	assert.Equal(t, "B0200000007", GenerateReceiptNumber("no_such_type", 7))
	assert.Equal(t, "B0200000007", GenerateReceiptNumber("", 7))
}

func TestValidateReceiptNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"B0100000001", true},
		{"B1400000099", true},
		{"Z9912345678", false},
		{"B0500000001", false},
		{"B010000001", false},
		{"B01000000011", false},
		{"b0100000001", false},
		{"B01-0000001", false},
		{" B0100000001", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateReceiptNumber(tt.in), "%q", tt.in)
	}
}

func TestGeneratedNumbersValidate(t *testing.T) {
	for _, dt := range DocumentTypes() {
		n := GenerateReceiptNumber(dt.Key, 42)
		assert.Len(t, n, Length)
		assert.True(t, ValidateReceiptNumber(n), n)
	}
}

func TestParseReceiptNumber(t *testing.T) {
	dt, seq, ok := ParseReceiptNumber("B0400000120")
	require.True(t, ok)
	assert.Equal(t, "credit_note", dt.Key)
	assert.Equal(t, int64(120), seq)

	_, _, ok = ParseReceiptNumber("")
	assert.False(t, ok)
	_, _, ok = ParseReceiptNumber("Z9912345678")
	assert.False(t, ok)
}

func TestDocumentTypesIsACopy(t *testing.T) {
	types := DocumentTypes()
	require.Len(t, types, 9)
	types[0].Prefix = "X99"
	dt, ok := Lookup("credit_fiscal")
	require.True(t, ok)
	assert.Equal(t, "B01", dt.Prefix)
}
