package document

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidbz/tarifa/internal/domain"
)

const defaultLocalCurrency = "COP"

// DefaultUserSlider and DefaultStorageSlider apply when a slider block is absent.
var (
	DefaultUserSlider    = domain.Slider{Min: 1, Max: 500, Step: 1, Default: 10}
	DefaultStorageSlider = domain.Slider{Min: 0, Max: 10000, Step: 50, Default: 100}
)

var hundred = decimal.NewFromInt(100)

// Bundle is a decoded and validated set of pricing documents.
type Bundle struct {
	Pricing    PricingConfig
	TierPrices TierPrices
	Modules    Modules
	// Categories is nil when categories-config.json is absent.
	Categories Categories
	// Raw keeps the bytes each document was decoded from.
	Raw map[string][]byte
}

// Decode builds a bundle from raw documents keyed by name. The categories
// document may be missing; every other one is required.
func Decode(raw map[string][]byte) (*Bundle, error) {
	for _, name := range Names() {
		if _, ok := raw[name]; !ok && Required(name) {
			return nil, &domain.ConfigurationError{Field: name, Reason: "document is required", Cause: domain.ErrDocumentNotFound}
		}
	}

	pricing, err := DecodePricingConfig(raw[PricingConfigName])
	if err != nil {
		return nil, err
	}
	tiers, err := DecodeTierPrices(raw[TierPricesName])
	if err != nil {
		return nil, err
	}
	modules, err := DecodeModules(raw[ModulesName])
	if err != nil {
		return nil, err
	}

	var categories Categories
	if data, ok := raw[CategoriesName]; ok {
		if categories, err = DecodeCategories(data); err != nil {
			return nil, err
		}
	}

	kept := make(map[string][]byte, len(raw))
	for name, data := range raw {
		kept[name] = data
	}

	return &Bundle{
		Pricing:    pricing,
		TierPrices: tiers,
		Modules:    modules,
		Categories: categories,
		Raw:        kept,
	}, nil
}

// Configuration converts the pricing document into the engine configuration.
// Bands are sorted by upper bound; missing prices, exchange rate or discount
// are configuration errors.
func (b *Bundle) Configuration() (domain.Configuration, error) {
	doc := b.Pricing

	userBands := make([]domain.Band, 0, len(doc.UsersPricing))
	for i, band := range doc.UsersPricing {
		if band.PricePerUser == nil {
			return domain.Configuration{}, domain.NewConfigurationError(
				fmt.Sprintf("usersPricing[%d].pricePerUser", i), "price is required")
		}
		userBands = append(userBands, domain.Band{UpTo: band.UpTo, UnitPrice: *band.PricePerUser})
	}
	userScale, err := domain.NewScale(sortBands(userBands))
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("usersPricing: %w", err)
	}

	storage, err := b.storagePricing()
	if err != nil {
		return domain.Configuration{}, err
	}

	discount, err := b.annualDiscount()
	if err != nil {
		return domain.Configuration{}, err
	}

	if doc.ExchangeRate == nil {
		return domain.Configuration{}, domain.NewConfigurationError("exchangeRate", "exchange rate is required")
	}

	localCurrency := doc.LocalCurrency
	if localCurrency == "" {
		localCurrency = defaultLocalCurrency
	}

	currency, err := displayCurrency(doc.Currency, localCurrency)
	if err != nil {
		return domain.Configuration{}, err
	}

	cfg := domain.Configuration{
		UserScale:             userScale,
		Storage:               storage,
		Surcharges:            surchargeFactors(doc.SaaSMultipliers),
		AnnualDiscountPercent: discount,
		ExchangeRate:          *doc.ExchangeRate,
		LocalCurrency:         localCurrency,
		DefaultCurrency:       currency,
		DefaultBillingCycle:   domain.BillingCycle(doc.BillingCycle),
		UserSlider:            sliderOrDefault(doc.UserSlider, DefaultUserSlider),
		StorageSlider:         sliderOrDefault(doc.StorageSlider, DefaultStorageSlider),
	}

	if err := cfg.Validate(); err != nil {
		return domain.Configuration{}, err
	}
	return cfg, nil
}

// TierTable returns the tier prices as a domain table.
func (b *Bundle) TierTable() domain.TierTable {
	table := make(domain.TierTable, len(b.TierPrices))
	for tier, price := range b.TierPrices {
		table[tier] = price
	}
	return table
}

// Catalog returns the engine items in document order.
func (b *Bundle) Catalog() []domain.Item {
	items := make([]domain.Item, 0, len(b.Modules))
	for _, m := range b.Modules {
		items = append(items, domain.Item{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Calculable:  m.IsCalculable(),
			PricingTier: m.PricingTier,
			Category:    m.Category,
			Selected:    false,
		})
	}
	return items
}

// Module returns the full catalog document entry for id.
func (b *Bundle) Module(id string) (Module, bool) {
	for _, m := range b.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// NewEngine builds a pricing engine from the bundle.
func (b *Bundle) NewEngine(opts ...domain.Option) (*domain.Engine, error) {
	cfg, err := b.Configuration()
	if err != nil {
		return nil, err
	}
	return domain.NewEngine(cfg, b.Catalog(), b.TierTable(), opts...)
}

func (b *Bundle) storagePricing() (domain.StoragePricing, error) {
	doc := b.Pricing.StoragePricing

	bands := make([]domain.Band, 0, len(doc.Tiers))
	for i, band := range doc.Tiers {
		if band.PricePerGB == nil {
			return domain.StoragePricing{}, domain.NewConfigurationError(
				fmt.Sprintf("storagePricing.tiers[%d].pricePerGB", i), "price is required")
		}
		bands = append(bands, domain.Band{UpTo: band.UpTo, UnitPrice: *band.PricePerGB})
	}
	scale, err := domain.NewScale(sortBands(bands))
	if err != nil {
		return domain.StoragePricing{}, fmt.Errorf("storagePricing.tiers: %w", err)
	}

	flat := decimal.NullDecimal{}
	if doc.PricePerGB != nil {
		flat = decimal.NewNullDecimal(*doc.PricePerGB)
	}

	return domain.StoragePricing{
		IncludedGB:     doc.IncludedGB,
		Scale:          scale,
		FlatPricePerGB: flat,
	}, nil
}

// annualDiscount prefers annualDiscountPercent and falls back to the legacy
// multiplier, where 0.85 means a 15% discount.
func (b *Bundle) annualDiscount() (decimal.Decimal, error) {
	doc := b.Pricing
	switch {
	case doc.AnnualDiscountPercent != nil:
		return *doc.AnnualDiscountPercent, nil
	case doc.AnnualSaaSMultiplier != nil:
		return decimal.NewFromInt(1).Sub(*doc.AnnualSaaSMultiplier).Mul(hundred), nil
	default:
		return decimal.Zero, domain.NewConfigurationError("annualDiscountPercent", "annual discount is required")
	}
}

func displayCurrency(code, localCurrency string) (domain.Currency, error) {
	switch strings.ToUpper(code) {
	case "", string(domain.CurrencyUSD):
		return domain.CurrencyUSD, nil
	case string(domain.CurrencyLocal), localCurrency:
		return domain.CurrencyLocal, nil
	default:
		return "", domain.NewConfigurationError("currency", fmt.Sprintf("unknown currency %q", code))
	}
}

func surchargeFactors(doc *Multipliers) domain.SurchargeFactors {
	var factors domain.SurchargeFactors
	if doc == nil {
		return factors
	}
	if doc.Enterprise != nil {
		factors.Enterprise = *doc.Enterprise
	}
	if doc.DedicatedInstance != nil {
		factors.DedicatedInstance = *doc.DedicatedInstance
	}
	if doc.Compliance != nil {
		factors.Compliance = *doc.Compliance
	}
	return factors
}

func sliderOrDefault(slider *domain.Slider, fallback domain.Slider) domain.Slider {
	if slider == nil {
		return fallback
	}
	return *slider
}

func sortBands(bands []domain.Band) []domain.Band {
	slices.SortStableFunc(bands, func(a, b domain.Band) int {
		return cmp.Compare(a.UpTo, b.UpTo)
	})
	return bands
}
