package model

import (
	"github.com/shopspring/decimal"
)

// PortfolioEntry is one buy recorded by a user. Total is Price × Quantity.
type PortfolioEntry struct {
	Email    string          `json:"email"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	Date     string          `json:"date"`
}

// Holding aggregates every entry a user has for one symbol.
// AvgCost is the PMC: Spent divided by Quantity.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Spent    decimal.Decimal `json:"spent"`
	AvgCost  decimal.Decimal `json:"avg_cost"`
	Entries  int             `json:"entries"`
}
