package report

import (
	"dgii_fiscal/internal/models"

	"github.com/shopspring/decimal"
)

type Summary struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalTax    decimal.Decimal `json:"total_tax"`
}

// SummarizeReport totals the records as given; missing amounts count as zero.
func SummarizeReport(txs []models.Transaction) Summary {
	s := Summary{Count: len(txs), TotalAmount: decimal.Zero, TotalTax: decimal.Zero}
	for _, tx := range txs {
		if tx.Total.Valid {
			s.TotalAmount = s.TotalAmount.Add(tx.Total.Decimal)
		}
		if tx.Tax.Valid {
			s.TotalTax = s.TotalTax.Add(tx.Tax.Decimal)
		}
	}
	return s
}
