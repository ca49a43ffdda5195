package models

import "github.com/shopspring/decimal"

// Transaction is a sale or purchase as read from the books. Amounts that were
// not supplied are left invalid and treated as zero or derived by renderers.
type Transaction struct {
	CounterpartyID string
	NCF            string
	Subtotal       decimal.NullDecimal
	Tax            decimal.NullDecimal
	Total          decimal.NullDecimal
	PaymentMethod  string
	Date           string
	PaidAt         string
	Service        bool
}

// PayrollEntry is the minimal per-employee payroll line.
type PayrollEntry struct {
	EmployeeID  string
	Period      string
	GrossSalary decimal.Decimal
	ISRWithheld decimal.Decimal
}
