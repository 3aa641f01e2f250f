package services

import (
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/config"

	"github.com/shopspring/decimal"
)

// FlatRate charges the same amount for every booking
type FlatRate struct {
	Amount decimal.Decimal
}

// Quote returns the flat amount
func (p FlatRate) Quote(_ *models.WashingMachine, _ time.Time, _, _ time.Duration) decimal.Decimal {
	return p.Amount.Round(2)
}

// HourlyRate charges per started hour of the booked window
type HourlyRate struct {
	Rate decimal.Decimal
}

// Quote returns rate * ceil(hours), with a minimum of one hour
func (p HourlyRate) Quote(_ *models.WashingMachine, _ time.Time, start, end time.Duration) decimal.Decimal {
	hours := int64((end - start + time.Hour - 1) / time.Hour)
	if hours < 1 {
		hours = 1
	}
	return p.Rate.Mul(decimal.NewFromInt(hours)).Round(2)
}

// NewPricingStrategy builds the strategy selected by configuration
func NewPricingStrategy(cfg config.PricingConfig) PricingStrategy {
	if cfg.Mode == "hourly" {
		return HourlyRate{Rate: cfg.HourlyRate}
	}
	return FlatRate{Amount: cfg.FlatAmount}
}
