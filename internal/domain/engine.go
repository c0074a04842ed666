package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidbz/tarifa/internal/observability"
)

// Engine owns the selection state of one quoting session and prices it on demand.
// Totals are never cached. An Engine is not safe for concurrent use.
type Engine struct {
	cfg   Configuration
	tiers TierTable
	items []Item
	index map[string]int

	userCount    int64
	storageGB    int64
	billingCycle BillingCycle
	currency     Currency
	surcharges   map[Surcharge]bool

	sessionID string
	logger    *zap.Logger
	events    EventPublisher
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEventPublisher sets the publisher for engine events.
func WithEventPublisher(publisher EventPublisher) Option {
	return func(e *Engine) {
		e.events = publisher
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.sessionID = id
		}
	}
}

// NewEngine validates the configuration, tier table and catalog and starts a
// session with the configured defaults. Any missing pricing data fails with a
// ConfigurationError; nothing is defaulted.
func NewEngine(cfg Configuration, catalog []Item, tiers TierTable, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(tiers) == 0 {
		return nil, NewConfigurationError("tiers", "tier table is required")
	}
	for tier, price := range tiers {
		if tier == "" {
			return nil, NewConfigurationError("tiers", "tier key must not be empty")
		}
		if price.IsNegative() {
			return nil, NewConfigurationError(fmt.Sprintf("tiers.%s", tier), "price must not be negative")
		}
	}

	if len(catalog) == 0 {
		return nil, NewConfigurationError("catalog", "at least one item is required")
	}

	items := make([]Item, 0, len(catalog))
	index := make(map[string]int, len(catalog))
	for i, item := range catalog {
		if item.ID == "" {
			return nil, NewConfigurationError(fmt.Sprintf("catalog[%d].id", i), "identifier is required")
		}
		if _, exists := index[item.ID]; exists {
			return nil, NewConfigurationError(fmt.Sprintf("catalog[%d].id", i), fmt.Sprintf("duplicate identifier %q", item.ID))
		}
		item.Selected = false
		index[item.ID] = len(items)
		items = append(items, item)
	}

	tableCopy := make(TierTable, len(tiers))
	for tier, price := range tiers {
		tableCopy[tier] = price
	}

	cfg.Surcharges = cfg.Surcharges.withDefaults()
	if cfg.DefaultBillingCycle == "" {
		cfg.DefaultBillingCycle = BillingMonthly
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = CurrencyUSD
	}

	engine := &Engine{
		cfg:          cfg,
		tiers:        tableCopy,
		items:        items,
		index:        index,
		userCount:    cfg.UserSlider.Default,
		storageGB:    cfg.StorageSlider.Default,
		billingCycle: cfg.DefaultBillingCycle,
		currency:     cfg.DefaultCurrency,
		surcharges:   make(map[Surcharge]bool, len(Surcharges())),
		sessionID:    uuid.New().String(),
		logger:       nil,
		events:       nil,
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.logger == nil {
		ctx := observability.WithSessionID(context.Background(), engine.sessionID)
		engine.logger = observability.FromContext(ctx)
	}

	for _, warning := range engine.unresolvedTiers() {
		engine.logger.Warn("catalog item has no resolvable pricing tier",
			observability.String("item_id", warning.ItemID),
			observability.String("tier", warning.Tier))
	}

	engine.logger.Debug("pricing engine initialized",
		observability.Int("items", len(items)),
		observability.Int("tiers", len(tableCopy)))

	return engine, nil
}

// SessionID returns the identifier of this quoting session.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Configuration returns a copy of the configuration in effect.
func (e *Engine) Configuration() Configuration {
	return e.cfg
}

// ToggleItem flips the selection of the item with the given identifier.
func (e *Engine) ToggleItem(id string) error {
	i, ok := e.index[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	e.items[i].Selected = !e.items[i].Selected
	e.logger.Debug("item toggled",
		observability.String("item_id", id),
		observability.Bool("selected", e.items[i].Selected))
	e.publish(EventItemToggled, map[string]interface{}{
		"item_id":  id,
		"selected": e.items[i].Selected,
	})

	// Reported once per selection; breakdowns only carry the warning.
	if item := e.items[i]; item.Selected && item.Calculable {
		if _, ok := e.tiers.Lookup(item.PricingTier); !ok {
			e.logger.Warn("price not found for tier",
				observability.String("item_id", item.ID),
				observability.String("tier", item.PricingTier))
			e.publish(EventLookupWarning, map[string]interface{}{
				"item_id": item.ID,
				"tier":    item.PricingTier,
			})
		}
	}

	return nil
}

// SetUserCount replaces the user count, clamped to the user slider. It returns
// the value actually stored.
func (e *Engine) SetUserCount(n int64) int64 {
	e.userCount = e.clamp("user_count", e.cfg.UserSlider, n)
	return e.userCount
}

// SetStorageGB replaces the storage amount, clamped to the storage slider. It
// returns the value actually stored.
func (e *Engine) SetStorageGB(n int64) int64 {
	e.storageGB = e.clamp("storage_gb", e.cfg.StorageSlider, n)
	return e.storageGB
}

// SetBillingCycle replaces the billing cycle.
func (e *Engine) SetBillingCycle(cycle BillingCycle) error {
	if !cycle.Valid() {
		return &InvalidOptionError{Option: "billing_cycle", Value: string(cycle)}
	}
	e.billingCycle = cycle
	return nil
}

// SetCurrency replaces the display currency.
func (e *Engine) SetCurrency(currency Currency) error {
	if !currency.Valid() {
		return &InvalidOptionError{Option: "currency", Value: string(currency)}
	}
	e.currency = currency
	return nil
}

// SetSurchargeFlag enables or disables a surcharge.
func (e *Engine) SetSurchargeFlag(flag Surcharge, enabled bool) error {
	if !flag.Valid() {
		return &InvalidOptionError{Option: "surcharge", Value: string(flag)}
	}
	e.surcharges[flag] = enabled
	return nil
}

// Item returns the item with the given identifier.
func (e *Engine) Item(id string) (Item, error) {
	i, ok := e.index[id]
	if !ok {
		return Item{}, &NotFoundError{ID: id}
	}
	return e.items[i], nil
}

// Items returns every catalog item in catalog order.
func (e *Engine) Items() []Item {
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// SelectedItems returns the selected items in catalog order.
func (e *Engine) SelectedItems() []Item {
	var out []Item
	for _, item := range e.items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

// UserCount returns the current user count.
func (e *Engine) UserCount() int64 {
	return e.userCount
}

// StorageGB returns the current storage amount.
func (e *Engine) StorageGB() int64 {
	return e.storageGB
}

// BillingCycle returns the current billing cycle.
func (e *Engine) BillingCycle() BillingCycle {
	return e.billingCycle
}

// Currency returns the current display currency.
func (e *Engine) Currency() Currency {
	return e.currency
}

// SurchargeEnabled reports whether flag is enabled.
func (e *Engine) SurchargeEnabled(flag Surcharge) bool {
	return e.surcharges[flag]
}

// State returns a snapshot of the mutable session state.
func (e *Engine) State() State {
	selected := make([]string, 0, len(e.items))
	for _, item := range e.items {
		if item.Selected {
			selected = append(selected, item.ID)
		}
	}

	flags := make(map[Surcharge]bool, len(Surcharges()))
	for _, flag := range Surcharges() {
		flags[flag] = e.surcharges[flag]
	}

	return State{
		SelectedIDs:  selected,
		UserCount:    e.userCount,
		StorageGB:    e.storageGB,
		BillingCycle: e.billingCycle,
		Currency:     e.currency,
		Surcharges:   flags,
	}
}

func (e *Engine) clamp(field string, slider Slider, n int64) int64 {
	applied := slider.Clamp(n)
	if applied != n {
		e.logger.Debug("value clamped to slider bounds",
			observability.String("field", field),
			observability.Int64("requested", n),
			observability.Int64("applied", applied))
		e.publish(EventValueClamped, map[string]interface{}{
			"field":     field,
			"requested": n,
			"applied":   applied,
		})
	}
	return applied
}

// unresolvedTiers lists calculable catalog items whose tier is absent from the table.
func (e *Engine) unresolvedTiers() []LookupWarning {
	var warnings []LookupWarning
	for _, item := range e.items {
		if !item.Calculable {
			continue
		}
		if _, ok := e.tiers.Lookup(item.PricingTier); !ok {
			warnings = append(warnings, LookupWarning{ItemID: item.ID, ItemName: item.Name, Tier: item.PricingTier})
		}
	}
	return warnings
}

func (e *Engine) publish(eventType string, data map[string]interface{}) {
	if e.events == nil {
		return
	}
	data["session_id"] = e.sessionID
	e.events.Publish(eventType, data)
}
