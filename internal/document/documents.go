// Package document defines the JSON documents that configure the pricing
// engine, validates them and converts them into domain types.
package document

import (
	"github.com/shopspring/decimal"

	"github.com/davidbz/tarifa/internal/domain"
)

// Document names as served by a ConfigSource.
const (
	PricingConfigName = "pricing-config.json"
	TierPricesName    = "module-pricing.json"
	ModulesName       = "modules-data.json"
	CategoriesName    = "categories-config.json"
)

// Names lists every known document. Categories is the only optional one.
func Names() []string {
	return []string{PricingConfigName, TierPricesName, ModulesName, CategoriesName}
}

// Required reports whether the named document must be present.
func Required(name string) bool {
	return name != CategoriesName
}

// UserBand is one band of the progressive user scale.
type UserBand struct {
	UpTo         int64            `json:"upTo" validate:"gt=0" jsonschema:"minimum=1"`
	PricePerUser *decimal.Decimal `json:"pricePerUser" validate:"omitempty,gte=0" jsonschema:"minimum=0"`
}

// StorageBand is one band of the progressive storage scale.
type StorageBand struct {
	UpTo       int64            `json:"upTo" validate:"gt=0" jsonschema:"minimum=1"`
	PricePerGB *decimal.Decimal `json:"pricePerGB" validate:"omitempty,gte=0" jsonschema:"minimum=0"`
}

// StoragePricing prices storage above the included allowance, either through
// progressive tiers or the legacy flat pricePerGB.
type StoragePricing struct {
	IncludedGB int64            `json:"includedGB" validate:"gte=0" jsonschema:"minimum=0"`
	Tiers      []StorageBand    `json:"tiers,omitempty" validate:"omitempty,dive"`
	PricePerGB *decimal.Decimal `json:"pricePerGB,omitempty" validate:"omitempty,gte=0" jsonschema:"minimum=0"`
}

// Multipliers holds the surcharge factors. Omitted factors use the engine defaults.
type Multipliers struct {
	Enterprise        *decimal.Decimal `json:"enterprise,omitempty" validate:"omitempty,gt=0"`
	DedicatedInstance *decimal.Decimal `json:"dedicatedInstance,omitempty" validate:"omitempty,gt=0"`
	Compliance        *decimal.Decimal `json:"compliance,omitempty" validate:"omitempty,gt=0"`
}

// PricingConfig is pricing-config.json.
type PricingConfig struct {
	UsersPricing    []UserBand      `json:"usersPricing" validate:"required,min=1,dive"`
	StoragePricing  *StoragePricing `json:"storagePricing" validate:"required"`
	SaaSMultipliers *Multipliers    `json:"saasMultipliers,omitempty"`

	AnnualDiscountPercent *decimal.Decimal `json:"annualDiscountPercent,omitempty" validate:"omitempty,gte=0,lt=100" jsonschema:"minimum=0,exclusiveMaximum=100"`
	// AnnualSaaSMultiplier is the legacy spelling of the discount: 0.85 means 15% off.
	AnnualSaaSMultiplier *decimal.Decimal `json:"annualSaaSMultiplier,omitempty" validate:"omitempty,gt=0,lte=1"`

	ExchangeRate  *decimal.Decimal `json:"exchangeRate" validate:"omitempty,gt=0" jsonschema:"exclusiveMinimum=0"`
	Currency      string           `json:"currency,omitempty"`
	LocalCurrency string           `json:"localCurrency,omitempty" validate:"omitempty,len=3,uppercase"`
	BillingCycle  string           `json:"billingCycle,omitempty" validate:"omitempty,oneof=monthly annual" jsonschema:"enum=monthly,enum=annual"`

	UserSlider    *domain.Slider `json:"userSlider,omitempty"`
	StorageSlider *domain.Slider `json:"storageSlider,omitempty"`
}

// TierPrices is module-pricing.json: a flat map of tier key to monthly USD price.
type TierPrices map[string]decimal.Decimal

// Module is one catalog entry of modules-data.json. Icon, URL, Type and
// PriceBehavior are presentational, never reach the engine and are not validated.
type Module struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`
	URL           string `json:"url,omitempty"`
	Type          string `json:"type,omitempty"`
	PriceBehavior string `json:"price_behavior,omitempty"`
	// Calculable defaults to true when omitted.
	Calculable  *bool  `json:"calculable,omitempty"`
	PricingTier string `json:"pricing_tier,omitempty"`
	Category    string `json:"category,omitempty"`
}

// IsCalculable resolves the calculable default.
func (m Module) IsCalculable() bool {
	return m.Calculable == nil || *m.Calculable
}

// Modules is modules-data.json.
type Modules []Module

// Category describes how a catalog category is presented.
type Category struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Order       int    `json:"order"`
}

// Categories is categories-config.json, keyed by the category referenced from modules.
type Categories map[string]Category
