package models

import "time"

type Category string

const (
	CategoryRegistered Category = "registered"
	CategoryLarge      Category = "large_taxpayer"
	CategoryGovernment Category = "government"
	CategoryNonProfit  Category = "non_profit"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryRegistered, CategoryLarge, CategoryGovernment, CategoryNonProfit:
		return true
	}
	return false
}

type Regime string

const (
	RegimeOrdinary Regime = "ordinary"
	RegimeSpecial  Regime = "special"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Taxpayer is one row of the national registry, keyed by Identifier
// (11 digits, zero-padded).
type Taxpayer struct {
	Identifier       string
	LegalName        string
	TradeName        string
	Activity         string
	Category         Category
	Regime           Regime
	Status           Status
	ConstitutionDate *time.Time
	UpdatedAt        time.Time
}
