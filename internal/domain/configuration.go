package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Validate checks the configuration invariants. It never fills in prices.
func (c *Configuration) Validate() error {
	if c.UserScale.Len() == 0 {
		return NewConfigurationError("users_pricing", "at least one band is required")
	}

	if c.Storage.IncludedGB < 0 {
		return NewConfigurationError("storage_pricing.included_gb", "must not be negative")
	}
	if c.Storage.Scale.Len() == 0 {
		if !c.Storage.FlatPricePerGB.Valid {
			return NewConfigurationError("storage_pricing", "either tiers or a flat price per GB is required")
		}
		if c.Storage.FlatPricePerGB.Decimal.IsNegative() {
			return NewConfigurationError("storage_pricing.price_per_gb", "must not be negative")
		}
	}

	for _, flag := range Surcharges() {
		if c.Surcharges.Factor(flag).IsNegative() {
			return NewConfigurationError(fmt.Sprintf("surcharges.%s", flag), "must not be negative")
		}
	}

	if c.AnnualDiscountPercent.IsNegative() || c.AnnualDiscountPercent.GreaterThanOrEqual(hundred) {
		return NewConfigurationError("annual_discount_percent", "must be in [0, 100)")
	}

	if !c.ExchangeRate.IsPositive() {
		return NewConfigurationError("exchange_rate", "must be positive")
	}

	if c.DefaultCurrency != "" && !c.DefaultCurrency.Valid() {
		return NewConfigurationError("currency", fmt.Sprintf("unknown currency %q", c.DefaultCurrency))
	}
	if c.DefaultBillingCycle != "" && !c.DefaultBillingCycle.Valid() {
		return NewConfigurationError("billing_cycle", fmt.Sprintf("unknown billing cycle %q", c.DefaultBillingCycle))
	}

	if err := validateSlider("user_slider", c.UserSlider, 1); err != nil {
		return err
	}
	return validateSlider("storage_slider", c.StorageSlider, 0)
}

func validateSlider(field string, s Slider, floor int64) error {
	switch {
	case s.Min < floor:
		return NewConfigurationError(field+".min", fmt.Sprintf("must be at least %d", floor))
	case s.Max < s.Min:
		return NewConfigurationError(field+".max", "must not be below min")
	case s.Step <= 0:
		return NewConfigurationError(field+".step", "must be positive")
	case s.Default < s.Min || s.Default > s.Max:
		return NewConfigurationError(field+".default", "must be within [min, max]")
	}
	return nil
}

// annualFactor is the multiplier applied to the monthly total for annual billing.
func (c *Configuration) annualFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(c.AnnualDiscountPercent.Div(hundred))
}
