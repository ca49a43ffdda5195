package report

import (
	"strings"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/models"
)

const (
	PurchasesColumns = 23

	// 09: purchases and expenses that form part of the cost of sales.
	purchaseCategoryCode = "09"
	zero                 = "0.00"
)

// RenderPurchases produces the 606 body: one 23-column line per record, no header.
func RenderPurchases(txs []models.Transaction) string {
	lines := make([]string, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, strings.Join(purchaseColumns(tx), "|"))
	}
	return joinLines(lines)
}

func purchaseColumns(tx models.Transaction) []string {
	id := identifier.Digits(tx.CounterpartyID)
	idType := "2"
	if len(id) == identifier.BusinessLength {
		idType = "1"
	}

	issued := FormatDate(tx.Date)
	paid := issued
	if strings.TrimSpace(tx.PaidAt) != "" {
		paid = FormatDate(tx.PaidAt)
	}

	subtotal, itbis, total := amounts(tx)
	services, goods := zero, money(subtotal)
	if tx.Service {
		services, goods = money(subtotal), zero
	}

	cols := make([]string, 0, PurchasesColumns)
	cols = append(cols,
		id,
		idType,
		purchaseCategoryCode,
		strings.TrimSpace(tx.NCF),
		"", // modified NCF
		issued,
		paid,
		services,
		goods,
		money(total),
		money(itbis),
	)
	// withheld, proportional, cost, advanced and perceived ITBIS; ISR
	// withholding type, withheld ISR, perceived ISR; ISC; other taxes; legal tip.
	for len(cols) < PurchasesColumns-1 {
		cols = append(cols, zero)
	}
	return append(cols, PaymentMethodCode(tx.PaymentMethod))
}
