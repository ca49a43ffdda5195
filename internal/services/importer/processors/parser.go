package processors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/utils"
)

// MinFields is the narrowest registry line accepted.
const MinFields = 11

var (
	ErrFieldCount = errors.New("too few fields")
	ErrIdentifier = errors.New("identifier must be 8 to 11 digits")
	ErrEmptyName  = errors.New("empty legal name")
)

// ParseLine turns one pipe-delimited registry line into a Taxpayer. Field
// layout: 0 identifier, 1 legal name, 2 trade name, 3 activity,
// 9 constitution date, 10 status, 11 optional type code.
func ParseLine(text string, rules *Rules, now time.Time) (models.Taxpayer, error) {
	text = strings.TrimRight(text, "\r\n")
	text = strings.TrimPrefix(text, "\ufeff")
	fields := strings.Split(text, "|")
	if len(fields) < MinFields {
		return models.Taxpayer{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), MinFields)
	}

	id, ok := normalizeIdentifier(fields[0])
	if !ok {
		return models.Taxpayer{}, fmt.Errorf("%w: %q", ErrIdentifier, strings.TrimSpace(fields[0]))
	}
	legal := utils.CleanName(fields[1])
	if legal == "" {
		return models.Taxpayer{}, ErrEmptyName
	}
	trade := firstNonEmpty(utils.CleanName(fields[2]), legal)
	activity := utils.CleanName(fields[3])
	typeCode := field(fields, 11)

	return models.Taxpayer{
		Identifier:       id,
		LegalName:        legal,
		TradeName:        trade,
		Activity:         activity,
		Category:         rules.Classify(legal, typeCode),
		Regime:           rules.Regime(activity, typeCode),
		Status:           rules.Status(field(fields, 10)),
		ConstitutionDate: parseDateStrict(field(fields, 9)),
		UpdatedAt:        now,
	}, nil
}

// normalizeIdentifier accepts 8 to 11 ASCII digits and left-pads to the
// 11-digit storage form. The registry publishes bare digits, so separators
// mark a corrupt line.
func normalizeIdentifier(raw string) (string, bool) {
	d := strings.TrimSpace(raw)
	if len(d) < 8 || len(d) > identifier.PersonalLength {
		return "", false
	}
	for i := 0; i < len(d); i++ {
		if d[i] < '0' || d[i] > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", identifier.PersonalLength-len(d)) + d, true
}
