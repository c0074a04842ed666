package domain

import "github.com/shopspring/decimal"

var monthsPerYear = decimal.NewFromInt(12)

// UserCost prices the current user count on the user scale.
func (e *Engine) UserCost() decimal.Decimal {
	return e.cfg.UserScale.Cost(e.userCount)
}

// StorageCost prices the storage above the free allowance.
func (e *Engine) StorageCost() decimal.Decimal {
	cost, _, _ := e.storageCost()
	return cost
}

// ModulesCost sums the tier prices of the selected calculable items.
func (e *Engine) ModulesCost() decimal.Decimal {
	cost, _, _, _ := e.modulesCost()
	return cost
}

// Multiplier returns the product of the enabled surcharge factors.
func (e *Engine) Multiplier() decimal.Decimal {
	multiplier := decimal.NewFromInt(1)
	for _, flag := range Surcharges() {
		if e.surcharges[flag] {
			multiplier = multiplier.Mul(e.cfg.Surcharges.Factor(flag))
		}
	}
	return multiplier
}

// HasCalculableSelection reports whether at least one calculable item is selected.
func (e *Engine) HasCalculableSelection() bool {
	for _, item := range e.items {
		if item.Selected && item.Calculable {
			return true
		}
	}
	return false
}

// ComputeBreakdown itemizes the monthly USD total for the current state.
// It has no side effects; unresolved tiers are only listed in Warnings.
func (e *Engine) ComputeBreakdown() Breakdown {
	userCost, userBands := e.cfg.UserScale.Evaluate(e.userCount)
	storageCost, storageBands, billable := e.storageCost()
	modulesCost, lines, custom, warnings := e.modulesCost()

	subtotal := userCost.Add(modulesCost).Add(storageCost)
	multiplier := e.Multiplier()

	return Breakdown{
		UserCost:          userCost,
		ModulesCost:       modulesCost,
		StorageCost:       storageCost,
		Subtotal:          subtotal,
		Multiplier:        multiplier,
		TotalMonthlyUSD:   subtotal.Mul(multiplier),
		UserBands:         userBands,
		StorageBands:      storageBands,
		StorageMode:       e.cfg.Storage.Mode(),
		BillableStorageGB: billable,
		Modules:           lines,
		CustomQuote:       custom,
		Warnings:          warnings,
	}
}

// ComputeTotal applies billing cycle and currency conversion to the monthly
// total. It is zero when no calculable item is selected.
func (e *Engine) ComputeTotal() decimal.Decimal {
	return e.total(true)
}

// ComputeOriginalAnnualTotal is ComputeTotal without the annual discount.
func (e *Engine) ComputeOriginalAnnualTotal() decimal.Decimal {
	return e.total(false)
}

// Quote prices the current state in one pass.
func (e *Engine) Quote() Quote {
	breakdown := e.ComputeBreakdown()
	calculable := e.HasCalculableSelection()

	total := decimal.Zero
	original := decimal.Zero
	if calculable {
		total = e.convert(breakdown.TotalMonthlyUSD, true)
		original = e.convert(breakdown.TotalMonthlyUSD, false)
	}

	return Quote{
		SessionID:     e.sessionID,
		Breakdown:     breakdown,
		Total:         total,
		OriginalTotal: original,
		Calculable:    calculable,
		BillingCycle:  e.billingCycle,
		Currency:      e.currency,
		CurrencyCode:  e.CurrencyCode(),
		UserCount:     e.userCount,
		StorageGB:     e.storageGB,
	}
}

// CurrencyCode returns the ISO code of the display currency.
func (e *Engine) CurrencyCode() string {
	if e.currency == CurrencyLocal {
		return e.cfg.LocalCurrency
	}
	return string(CurrencyUSD)
}

func (e *Engine) total(discounted bool) decimal.Decimal {
	if !e.HasCalculableSelection() {
		return decimal.Zero
	}
	return e.convert(e.ComputeBreakdown().TotalMonthlyUSD, discounted)
}

func (e *Engine) convert(monthlyUSD decimal.Decimal, discounted bool) decimal.Decimal {
	total := monthlyUSD
	if e.billingCycle == BillingAnnual {
		if discounted {
			total = total.Mul(e.cfg.annualFactor())
		}
		total = total.Mul(monthsPerYear)
	}
	if e.currency == CurrencyLocal {
		total = total.Mul(e.cfg.ExchangeRate)
	}
	return total
}

func (e *Engine) storageCost() (decimal.Decimal, []BandCost, int64) {
	billable := max(0, e.storageGB-e.cfg.Storage.IncludedGB)

	if e.cfg.Storage.Mode() == StorageFlat {
		rate := e.cfg.Storage.FlatPricePerGB.Decimal
		return rate.Mul(decimal.NewFromInt(billable)), nil, billable
	}

	cost, bands := e.cfg.Storage.Scale.Evaluate(billable)
	return cost, bands, billable
}

func (e *Engine) modulesCost() (decimal.Decimal, []ModuleLine, []Item, []LookupWarning) {
	total := decimal.Zero
	var (
		lines    []ModuleLine
		custom   []Item
		warnings []LookupWarning
	)

	for _, item := range e.items {
		if !item.Selected {
			continue
		}
		if !item.Calculable {
			custom = append(custom, item)
			continue
		}

		price, ok := e.tiers.Lookup(item.PricingTier)
		if !ok {
			warnings = append(warnings, LookupWarning{ItemID: item.ID, ItemName: item.Name, Tier: item.PricingTier})
			price = decimal.Zero
		}

		total = total.Add(price)
		lines = append(lines, ModuleLine{
			ItemID: item.ID,
			Name:   item.Name,
			Tier:   item.PricingTier,
			Price:  price,
		})
	}

	return total, lines, custom, warnings
}
