// Package report renders DGII submission files (606 purchases, 607 sales and
// a payroll sheet) from transaction records. Renderers are pure: the same
// records always produce the same text, and bad dates or missing amounts
// degrade to empty or derived fields instead of failing the whole file.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/fiscal/tax"
	"dgii_fiscal/internal/models"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPurchases Kind = "606"
	KindSales     Kind = "607"
	KindPayroll   Kind = "payroll"
)

var ErrUnknownReport = errors.New("unknown report kind")

// ParseKind accepts the form codes and their english names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "606", "purchases", "compras":
		return KindPurchases, nil
	case "607", "sales", "ventas":
		return KindSales, nil
	case "payroll", "nomina", "t-registro":
		return KindPayroll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
}

type Input struct {
	RNC          string
	Period       string // YYYYMM
	Transactions []models.Transaction
	Payroll      []models.PayrollEntry
}

// Render dispatches to the renderer for kind.
func Render(kind Kind, in Input) (string, error) {
	switch kind {
	case KindPurchases:
		return RenderPurchases(in.Transactions), nil
	case KindSales:
		return RenderSales(in.Transactions), nil
	case KindPayroll:
		return RenderPayroll(in.RNC, in.Period, in.Payroll), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReport, kind)
}

// FileName follows the naming the DGII virtual office expects for uploads.
func FileName(kind Kind, rnc, period string) string {
	rnc = identifier.Digits(rnc)
	switch kind {
	case KindPurchases, KindSales:
		return fmt.Sprintf("DGII_F_%s_%s_%s.TXT", kind, rnc, period)
	default:
		return fmt.Sprintf("DGII_T_REGISTRO_%s_%s.TXT", rnc, period)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"20060102",
}

// FormatDate renders YYYYMMDD, or "" when s is empty or unparsable.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format("20060102")
		}
	}
	return ""
}

const cashCode = "1"

var paymentCodes = map[string]string{
	"cash":          "1",
	"efectivo":      "1",
	"check":         "2",
	"cheque":        "2",
	"transfer":      "2",
	"transferencia": "2",
	"deposit":       "2",
	"card":          "3",
	"credit_card":   "3",
	"debit_card":    "3",
	"tarjeta":       "3",
	"credit":        "4",
	"credito":       "4",
	"barter":        "5",
	"permuta":       "5",
	"credit_note":   "6",
	"nota_credito":  "6",
	"mixed":         "7",
	"mixto":         "7",
}

// PaymentMethodCode maps an internal payment-method key to the authority's
// single-digit code. Unknown or empty keys map to cash.
func PaymentMethodCode(method string) string {
	if c, ok := paymentCodes[strings.ToLower(strings.TrimSpace(method))]; ok {
		return c
	}
	return cashCode
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// amounts fills in whatever the record left out: net from gross, tax from
// subtotal or gross, total from subtotal plus tax.
func amounts(tx models.Transaction) (subtotal, itbis, total decimal.Decimal) {
	switch {
	case tx.Subtotal.Valid:
		subtotal = tx.Subtotal.Decimal
	case tx.Total.Valid:
		subtotal = tax.ComputeNetFromGross(tx.Total.Decimal)
	}
	switch {
	case tx.Tax.Valid:
		itbis = tx.Tax.Decimal
	case tx.Subtotal.Valid:
		itbis = tax.ComputeTax(tx.Subtotal.Decimal)
	case tx.Total.Valid:
		itbis = tax.ComputeTaxFromGross(tx.Total.Decimal)
	}
	if tx.Total.Valid {
		total = tx.Total.Decimal
	} else {
		total = subtotal.Add(itbis)
	}
	return subtotal, itbis, total
}

func joinLines(lines []string) string { return strings.Join(lines, "\n") }
