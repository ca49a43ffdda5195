package identifier

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBusiness(t *testing.T, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		body := fmt.Sprintf("%08d", (i*48271+1)%100000000)
		check, ok := ComputeBusinessCheckDigit(body)
		require.True(t, ok)
		out = append(out, body+strconv.Itoa(check))
	}
	return out
}

func samplePersonal(t *testing.T, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		body := fmt.Sprintf("%010d", (int64(i)*2654435761+7)%10000000000)
		check, ok := ComputePersonalCheckDigit(body)
		require.True(t, ok)
		out = append(out, body+strconv.Itoa(check))
	}
	return out
}

func businessResidue(d string) int {
	sum := 0
	for i, w := range businessWeights {
		sum += int(d[i]-'0') * w
	}
	return sum % 11
}

// Residues 0/9 and 1/10 map to the same check digit.
func aliased(a, b int) bool {
	pair := func(x, y int) bool { return (a == x && b == y) || (a == y && b == x) }
	return pair(0, 9) || pair(1, 10)
}

func mutate(s string, pos int, digit byte) string {
	b := []byte(s)
	b[pos] = digit
	return string(b)
}

func TestValidateBusinessIdentifier_Known(t *testing.T) {
	assert.True(t, ValidateBusinessIdentifier("101010632"))
	assert.True(t, ValidateBusinessIdentifier("1-01-01063-2"))
	assert.True(t, ValidateBusinessIdentifier("131246796"))
	assert.False(t, ValidateBusinessIdentifier("101010633"))
	assert.False(t, ValidateBusinessIdentifier("10101063"))
	assert.False(t, ValidateBusinessIdentifier("1010106321"))
	assert.False(t, ValidateBusinessIdentifier(""))
	assert.False(t, ValidateBusinessIdentifier("abcdefghi"))
}

func TestValidateBusinessIdentifier_RoundTrip(t *testing.T) {
	for _, id := range sampleBusiness(t, 300) {
		assert.True(t, ValidateBusinessIdentifier(id), id)
	}
}

func TestValidateBusinessIdentifier_SingleDigitMutations(t *testing.T) {
	total, caught := 0, 0
	for _, id := range sampleBusiness(t, 300) {
		r0 := businessResidue(id)
		for pos := 0; pos < BusinessLength; pos++ {
			for c := byte('0'); c <= '9'; c++ {
				if id[pos] == c {
					continue
				}
				m := mutate(id, pos, c)
				valid := ValidateBusinessIdentifier(m)
				total++
				if !valid {
					caught++
				}
				if pos == BusinessLength-1 {
					assert.False(t, valid, "check digit mutation %s -> %s", id, m)
					continue
				}
				assert.Equal(t, aliased(r0, businessResidue(m)), valid, "mutation %s -> %s", id, m)
			}
		}
	}
	assert.Greater(t, float64(caught)/float64(total), 0.9)
}

func TestValidatePersonalIdentifier_Known(t *testing.T) {
	assert.True(t, ValidatePersonalIdentifier("00113918205"))
	assert.True(t, ValidatePersonalIdentifier("001-1391820-5"))
	assert.True(t, ValidatePersonalIdentifier("40200000004"))
	assert.False(t, ValidatePersonalIdentifier("00113918204"))
	assert.False(t, ValidatePersonalIdentifier("0011391820"))
	assert.False(t, ValidatePersonalIdentifier(""))
}

func TestValidatePersonalIdentifier_SingleDigitMutationsAlwaysCaught(t *testing.T) {
	for _, id := range samplePersonal(t, 300) {
		require.True(t, ValidatePersonalIdentifier(id), id)
		for pos := 0; pos < PersonalLength; pos++ {
			for c := byte('0'); c <= '9'; c++ {
				if id[pos] == c {
					continue
				}
				m := mutate(id, pos, c)
				assert.False(t, ValidatePersonalIdentifier(m), "mutation %s -> %s", id, m)
			}
		}
	}
}

func TestComputeCheckDigit_ShortInput(t *testing.T) {
	_, ok := ComputeBusinessCheckDigit("1234")
	assert.False(t, ok)
	_, ok = ComputePersonalCheckDigit("123456789")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"business", FormatBusinessIdentifier, "101010632", "101-01063-2"},
		{"business with noise", FormatBusinessIdentifier, " 101 010 632 ", "101-01063-2"},
		{"business wrong length", FormatBusinessIdentifier, "1010106", "1010106"},
		{"personal", FormatPersonalIdentifier, "00113918205", "001-1391820-5"},
		{"personal wrong length", FormatPersonalIdentifier, "001139182", "001139182"},
		{"auto business", Format, "131246796", "131-24679-6"},
		{"auto personal", Format, "40200000004", "402-0000000-4"},
		{"auto unknown", Format, "12-34", "12-34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestKindOfAndValidate(t *testing.T) {
	assert.Equal(t, KindBusiness, KindOf("101-01063-2"))
	assert.Equal(t, KindPersonal, KindOf("00113918205"))
	assert.Equal(t, KindUnknown, KindOf("123"))
	assert.Equal(t, "business", KindBusiness.String())

	assert.True(t, Validate("101010632"))
	assert.True(t, Validate("00113918205"))
	assert.False(t, Validate("1234567"))
}
