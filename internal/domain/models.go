package domain

import "github.com/shopspring/decimal"

// BillingCycle selects how the monthly total is billed.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingAnnual  BillingCycle = "annual"
)

// Valid reports whether b is a known billing cycle.
func (b BillingCycle) Valid() bool {
	return b == BillingMonthly || b == BillingAnnual
}

// Currency selects the display currency. Prices are always held in USD.
type Currency string

const (
	CurrencyUSD   Currency = "USD"
	CurrencyLocal Currency = "LOCAL"
)

// Valid reports whether c is a known display currency.
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyLocal
}

// Surcharge identifies a multiplicative deployment surcharge.
type Surcharge string

const (
	SurchargeEnterprise Surcharge = "enterprise"
	SurchargeDedicated  Surcharge = "dedicated_instance"
	SurchargeCompliance Surcharge = "compliance"
)

// Surcharges lists every known surcharge flag in a stable order.
func Surcharges() []Surcharge {
	return []Surcharge{SurchargeEnterprise, SurchargeDedicated, SurchargeCompliance}
}

// Valid reports whether s is a known surcharge flag.
func (s Surcharge) Valid() bool {
	switch s {
	case SurchargeEnterprise, SurchargeDedicated, SurchargeCompliance:
		return true
	default:
		return false
	}
}

// Item is a selectable module or service from the catalog.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Calculable  bool   `json:"calculable"`
	PricingTier string `json:"pricing_tier,omitempty"`
	Category    string `json:"category,omitempty"`
	Selected    bool   `json:"selected"`
}

// TierTable maps a pricing tier key to its flat monthly USD price.
type TierTable map[string]decimal.Decimal

// Lookup returns the price for tier.
func (t TierTable) Lookup(tier string) (decimal.Decimal, bool) {
	price, ok := t[tier]
	return price, ok
}

// StorageMode reports which storage pricing path produced the cost.
type StorageMode string

const (
	StorageProgressive StorageMode = "progressive"
	StorageFlat        StorageMode = "flat"
)

// StoragePricing prices storage above a free allowance.
// When Scale has no bands the flat per-GB rate applies.
type StoragePricing struct {
	IncludedGB     int64
	Scale          Scale
	FlatPricePerGB decimal.NullDecimal
}

// Mode returns the pricing path in effect.
func (s StoragePricing) Mode() StorageMode {
	if s.Scale.Len() == 0 {
		return StorageFlat
	}
	return StorageProgressive
}

// SurchargeFactors holds the multiplier for each surcharge flag.
// Zero factors are replaced by the defaults when the engine is built.
type SurchargeFactors struct {
	Enterprise        decimal.Decimal
	DedicatedInstance decimal.Decimal
	Compliance        decimal.Decimal
}

// DefaultSurchargeFactors returns the factors used when none are configured.
func DefaultSurchargeFactors() SurchargeFactors {
	return SurchargeFactors{
		Enterprise:        decimal.RequireFromString("1.3"),
		DedicatedInstance: decimal.RequireFromString("1.5"),
		Compliance:        decimal.RequireFromString("1.2"),
	}
}

// Factor returns the multiplier for flag.
func (f SurchargeFactors) Factor(flag Surcharge) decimal.Decimal {
	switch flag {
	case SurchargeEnterprise:
		return f.Enterprise
	case SurchargeDedicated:
		return f.DedicatedInstance
	case SurchargeCompliance:
		return f.Compliance
	default:
		return decimal.NewFromInt(1)
	}
}

func (f SurchargeFactors) withDefaults() SurchargeFactors {
	defaults := DefaultSurchargeFactors()
	if f.Enterprise.IsZero() {
		f.Enterprise = defaults.Enterprise
	}
	if f.DedicatedInstance.IsZero() {
		f.DedicatedInstance = defaults.DedicatedInstance
	}
	if f.Compliance.IsZero() {
		f.Compliance = defaults.Compliance
	}
	return f
}

// Slider bounds a UI-controlled integer value.
type Slider struct {
	Min     int64 `json:"min"`
	Max     int64 `json:"max"`
	Step    int64 `json:"step"`
	Default int64 `json:"default"`
}

// Clamp snaps v to the nearest step counted from Min and keeps it in [Min, Max].
func (s Slider) Clamp(v int64) int64 {
	if v <= s.Min {
		return s.Min
	}
	if v >= s.Max {
		return s.Max
	}
	step := s.Step
	if step <= 0 {
		step = 1
	}
	offset := v - s.Min
	steps := offset / step
	if offset%step*2 >= step {
		steps++
	}
	snapped := s.Min + steps*step
	if snapped > s.Max {
		snapped -= step
	}
	return snapped
}

// Configuration is the immutable pricing configuration. All prices are USD.
type Configuration struct {
	UserScale             Scale
	Storage               StoragePricing
	Surcharges            SurchargeFactors
	AnnualDiscountPercent decimal.Decimal
	ExchangeRate          decimal.Decimal
	LocalCurrency         string
	DefaultCurrency       Currency
	DefaultBillingCycle   BillingCycle
	UserSlider            Slider
	StorageSlider         Slider
}

// ModuleLine is a priced module in a breakdown.
type ModuleLine struct {
	ItemID string          `json:"item_id"`
	Name   string          `json:"name"`
	Tier   string          `json:"tier"`
	Price  decimal.Decimal `json:"price"`
}

// Breakdown itemizes the monthly USD total.
type Breakdown struct {
	UserCost          decimal.Decimal `json:"user_cost"`
	ModulesCost       decimal.Decimal `json:"modules_cost"`
	StorageCost       decimal.Decimal `json:"storage_cost"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Multiplier        decimal.Decimal `json:"multiplier"`
	TotalMonthlyUSD   decimal.Decimal `json:"total_monthly_usd"`
	UserBands         []BandCost      `json:"user_bands,omitempty"`
	StorageBands      []BandCost      `json:"storage_bands,omitempty"`
	StorageMode       StorageMode     `json:"storage_mode"`
	BillableStorageGB int64           `json:"billable_storage_gb"`
	Modules           []ModuleLine    `json:"modules,omitempty"`
	CustomQuote       []Item          `json:"custom_quote,omitempty"`
	Warnings          []LookupWarning `json:"warnings,omitempty"`
}

// Quote is the complete priced snapshot handed to the presentation layer.
// Calculable is false when no calculable item is selected; Total is then zero.
type Quote struct {
	SessionID     string          `json:"session_id"`
	Breakdown     Breakdown       `json:"breakdown"`
	Total         decimal.Decimal `json:"total"`
	OriginalTotal decimal.Decimal `json:"original_total"`
	Calculable    bool            `json:"calculable"`
	BillingCycle  BillingCycle    `json:"billing_cycle"`
	Currency      Currency        `json:"currency"`
	CurrencyCode  string          `json:"currency_code"`
	UserCount     int64           `json:"user_count"`
	StorageGB     int64           `json:"storage_gb"`
}

// State is a read-only snapshot of the mutable engine state.
type State struct {
	SelectedIDs  []string           `json:"selected_ids"`
	UserCount    int64              `json:"user_count"`
	StorageGB    int64              `json:"storage_gb"`
	BillingCycle BillingCycle       `json:"billing_cycle"`
	Currency     Currency           `json:"currency"`
	Surcharges   map[Surcharge]bool `json:"surcharges"`
}
