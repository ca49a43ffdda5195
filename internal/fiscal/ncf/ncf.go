// Package ncf validates and generates Números de Comprobante Fiscal: one series
// letter, a 2-digit document type code and an 8-digit sequence.
package ncf

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	SequenceDigits = 8
	Length         = 3 + SequenceDigits
)

type DocumentType struct {
	Key         string
	Prefix      string
	Description string
}

const DefaultKey = "consumer"

// catalog order is the order DocumentTypes reports.
var catalog = []DocumentType{
	{Key: "credit_fiscal", Prefix: "B01", Description: "Factura de crédito fiscal"},
	{Key: "consumer", Prefix: "B02", Description: "Factura de consumo"},
	{Key: "debit_note", Prefix: "B03", Description: "Nota de débito"},
	{Key: "credit_note", Prefix: "B04", Description: "Nota de crédito"},
	{Key: "purchase", Prefix: "B11", Description: "Comprobante de compras"},
	{Key: "income", Prefix: "B12", Description: "Registro único de ingresos"},
	{Key: "minor_expense", Prefix: "B13", Description: "Comprobante para gastos menores"},
	{Key: "special_regime", Prefix: "B14", Description: "Comprobante para regímenes especiales"},
	{Key: "government", Prefix: "B15", Description: "Comprobante gubernamental"},
}

var (
	byKey    = make(map[string]DocumentType, len(catalog))
	byPrefix = make(map[string]DocumentType, len(catalog))
	patterns = make([]*regexp.Regexp, 0, len(catalog))
)

func init() {
	for _, dt := range catalog {
		byKey[dt.Key] = dt
		byPrefix[dt.Prefix] = dt
		patterns = append(patterns, regexp.MustCompile(`^`+dt.Prefix+`\d{8}$`))
	}
}

// DocumentTypes returns a copy of the catalog.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves a document type by key.
func Lookup(key string) (DocumentType, bool) {
	dt, ok := byKey[key]
	return dt, ok
}

// ValidateReceiptNumber reports whether value is a well-formed receipt number.
// The empty string is valid: the field is optional.
func ValidateReceiptNumber(value string) bool {
	if value == "" {
		return true
	}
	for _, p := range patterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// GenerateReceiptNumber builds prefix + zero-padded sequence. Unknown keys fall
// back to the consumer invoice prefix. Uniqueness is the caller's concern.
func GenerateReceiptNumber(docType string, sequence int64) string {
	dt, ok := byKey[docType]
	if !ok {
		dt = byKey[DefaultKey]
	}
	return fmt.Sprintf("%s%0*d", dt.Prefix, SequenceDigits, sequence)
}

// ParseReceiptNumber splits a valid, non-empty receipt number into its type
// and sequence.
func ParseReceiptNumber(value string) (DocumentType, int64, bool) {
	if value == "" || !ValidateReceiptNumber(value) {
		return DocumentType{}, 0, false
	}
	dt := byPrefix[value[:3]]
	seq, err := strconv.ParseInt(value[3:], 10, 64)
	if err != nil {
		return DocumentType{}, 0, false
	}
	return dt, seq, true
}
