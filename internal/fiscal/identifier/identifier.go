// Package identifier validates and formats Dominican taxpayer identifiers:
// the 9-digit RNC issued to businesses and the 11-digit cédula issued to persons.
//
// Every function here is pure. Invalid input yields false or the input string
// unchanged, never an error, so callers can run them on every keystroke.
package identifier

import "strings"

const (
	BusinessLength = 9
	PersonalLength = 11
)

type Kind int

const (
	KindUnknown Kind = iota
	KindBusiness
	KindPersonal
)

func (k Kind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindPersonal:
		return "personal"
	default:
		return "unknown"
	}
}

var (
	businessWeights = [8]int{7, 9, 8, 6, 5, 4, 3, 2}
	personalWeights = [10]int{1, 2, 1, 2, 1, 2, 1, 2, 1, 2}
)

// Digits drops every non-digit character from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// KindOf classifies s by its digit count only; it does not check the digit.
func KindOf(s string) Kind {
	switch len(Digits(s)) {
	case BusinessLength:
		return KindBusiness
	case PersonalLength:
		return KindPersonal
	default:
		return KindUnknown
	}
}

// ComputeBusinessCheckDigit returns the RNC check digit for the first 8 digits
// of body. ok is false when body does not hold at least 8 digits.
func ComputeBusinessCheckDigit(body string) (digit int, ok bool) {
	d := Digits(body)
	if len(d) < len(businessWeights) {
		return 0, false
	}
	sum := 0
	for i, w := range businessWeights {
		sum += int(d[i]-'0') * w
	}
	check := 11 - sum%11
	if check >= 10 {
		check -= 9
	}
	return check, true
}

// ComputePersonalCheckDigit returns the cédula check digit for the first 10
// digits of body using the Luhn-style digit-sum reduction.
func ComputePersonalCheckDigit(body string) (digit int, ok bool) {
	d := Digits(body)
	if len(d) < len(personalWeights) {
		return 0, false
	}
	sum := 0
	for i, w := range personalWeights {
		p := int(d[i]-'0') * w
		if p >= 10 {
			p = p/10 + p%10
		}
		sum += p
	}
	r := sum % 10
	if r == 0 {
		return 0, true
	}
	return 10 - r, true
}

func ValidateBusinessIdentifier(id string) bool {
	d := Digits(id)
	if len(d) != BusinessLength {
		return false
	}
	check, ok := ComputeBusinessCheckDigit(d)
	return ok && int(d[8]-'0') == check
}

func ValidatePersonalIdentifier(id string) bool {
	d := Digits(id)
	if len(d) != PersonalLength {
		return false
	}
	check, ok := ComputePersonalCheckDigit(d)
	return ok && int(d[10]-'0') == check
}

// Validate accepts either identifier type, chosen by digit count.
func Validate(id string) bool {
	switch KindOf(id) {
	case KindBusiness:
		return ValidateBusinessIdentifier(id)
	case KindPersonal:
		return ValidatePersonalIdentifier(id)
	default:
		return false
	}
}

// FormatBusinessIdentifier renders XXX-XXXXX-X. Input that does not reduce to
// exactly 9 digits is returned as given.
func FormatBusinessIdentifier(id string) string {
	d := Digits(id)
	if len(d) != BusinessLength {
		return id
	}
	return d[:3] + "-" + d[3:8] + "-" + d[8:]
}

// FormatPersonalIdentifier renders XXX-XXXXXXX-X. Input that does not reduce
// to exactly 11 digits is returned as given.
func FormatPersonalIdentifier(id string) string {
	d := Digits(id)
	if len(d) != PersonalLength {
		return id
	}
	return d[:3] + "-" + d[3:10] + "-" + d[10:]
}

// Format picks the display format by digit count.
func Format(id string) string {
	switch KindOf(id) {
	case KindBusiness:
		return FormatBusinessIdentifier(id)
	case KindPersonal:
		return FormatPersonalIdentifier(id)
	default:
		return id
	}
}
