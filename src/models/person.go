package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Person struct {
	ID         string           `json:"id"`
	FullName   string           `json:"full_name"`
	Title      string           `json:"title"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	Email      string           `json:"email"`
	CreatedAt  time.Time        `json:"created_at"`
}
