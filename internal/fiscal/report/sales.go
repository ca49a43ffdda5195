package report

import (
	"strings"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/models"
)

const SalesColumns = 7

// RenderSales produces the 607 body: one 7-column line per record, no header.
func RenderSales(txs []models.Transaction) string {
	lines := make([]string, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, strings.Join(salesColumns(tx), "|"))
	}
	return joinLines(lines)
}

func salesColumns(tx models.Transaction) []string {
	id := identifier.Digits(tx.CounterpartyID)
	idType := "1"
	if id == "" {
		idType = "3" // final consumer
	}
	subtotal, itbis, _ := amounts(tx)
	return []string{
		id,
		idType,
		strings.TrimSpace(tx.NCF),
		"", // modified NCF
		FormatDate(tx.Date),
		money(itbis),
		money(subtotal),
	}
}
