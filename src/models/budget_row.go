package models

import "github.com/shopspring/decimal"

// BudgetYears is the number of year slots every budget row carries.
const BudgetYears = 5

type BudgetRow struct {
	ID           string                       `json:"id"`
	ProposalID   string                       `json:"proposal_id"`
	PersonID     string                       `json:"person_id"`
	Title        string                       `json:"title"`
	RateOverride *decimal.Decimal             `json:"rate_override"`
	Hours        [BudgetYears]decimal.Decimal `json:"hours"`
	Position     int                          `json:"position"`
}
