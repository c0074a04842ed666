package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidbz/tarifa/internal/domain"
)

func requireDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestEngine_TotalIsZeroWithoutCalculableSelection(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetUserCount(500)
	engine.SetStorageGB(2000)
	require.NoError(t, engine.SetSurchargeFlag(domain.SurchargeEnterprise, true))

	t.Run("nothing selected", func(t *testing.T) {
		require.False(t, engine.HasCalculableSelection())
		requireDecimal(t, "0", engine.ComputeTotal())
		requireDecimal(t, "0", engine.ComputeOriginalAnnualTotal())
	})

	t.Run("only custom quote items selected", func(t *testing.T) {
		require.NoError(t, engine.ToggleItem("archivo"))
		require.False(t, engine.HasCalculableSelection())
		requireDecimal(t, "0", engine.ComputeTotal())

		quote := engine.Quote()
		require.False(t, quote.Calculable)
		requireDecimal(t, "0", quote.Total)
		require.Len(t, quote.Breakdown.CustomQuote, 1)
	})
}

func TestEngine_ScenarioB_StorageAboveAllowance(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetStorageGB(600)

	breakdown := engine.ComputeBreakdown()
	require.Equal(t, domain.StorageProgressive, breakdown.StorageMode)
	require.Equal(t, int64(500), breakdown.BillableStorageGB)
	requireDecimal(t, "2000", breakdown.StorageCost)
	requireDecimal(t, "2000", engine.StorageCost())
	require.Len(t, breakdown.StorageBands, 1)
}

func TestEngine_StorageWithinAllowanceIsFree(t *testing.T) {
	engine := newTestEngine(t)
	engine.SetStorageGB(80)

	breakdown := engine.ComputeBreakdown()
	require.Equal(t, int64(0), breakdown.BillableStorageGB)
	requireDecimal(t, "0", breakdown.StorageCost)
	require.Empty(t, breakdown.StorageBands)
}

func TestEngine_ScenarioC_CustomQuoteItems(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.ToggleItem("correspondencia"))
	require.NoError(t, engine.ToggleItem("archivo"))

	breakdown := engine.ComputeBreakdown()
	requireDecimal(t, "50", breakdown.ModulesCost)
	requireDecimal(t, "50", engine.ModulesCost())

	require.Len(t, breakdown.Modules, 1)
	require.Equal(t, "correspondencia", breakdown.Modules[0].ItemID)
	requireDecimal(t, "50", breakdown.Modules[0].Price)

	require.Len(t, breakdown.CustomQuote, 1)
	require.Equal(t, "archivo", breakdown.CustomQuote[0].ID)
	require.Empty(t, breakdown.Warnings)
	require.True(t, engine.HasCalculableSelection())
}

func TestEngine_ScenarioD_AnnualDiscount(t *testing.T) {
	// 10 users at 5, one basic module at 50 and 25 billable GB at 4.
	engine := newTestEngine(t)
	require.NoError(t, engine.ToggleItem("correspondencia"))
	engine.SetUserCount(10)
	engine.SetStorageGB(125)

	breakdown := engine.ComputeBreakdown()
	requireDecimal(t, "50", breakdown.UserCost)
	requireDecimal(t, "50", breakdown.ModulesCost)
	requireDecimal(t, "100", breakdown.StorageCost)
	requireDecimal(t, "200", breakdown.Subtotal)
	requireDecimal(t, "1", breakdown.Multiplier)
	requireDecimal(t, "200", breakdown.TotalMonthlyUSD)

	requireDecimal(t, "200", engine.ComputeTotal())
	requireDecimal(t, "200", engine.ComputeOriginalAnnualTotal())

	require.NoError(t, engine.SetBillingCycle(domain.BillingAnnual))
	requireDecimal(t, "2040", engine.ComputeTotal())
	requireDecimal(t, "2400", engine.ComputeOriginalAnnualTotal())

	factor := dec("0.85")
	require.True(t, engine.ComputeOriginalAnnualTotal().Mul(factor).Equal(engine.ComputeTotal()))
}

func TestEngine_CurrencyConversionIsScalar(t *testing.T) {
	tests := []struct {
		name  string
		cycle domain.BillingCycle
		flags []domain.Surcharge
	}{
		{name: "monthly", cycle: domain.BillingMonthly},
		{name: "annual", cycle: domain.BillingAnnual},
		{name: "annual with surcharges", cycle: domain.BillingAnnual, flags: []domain.Surcharge{domain.SurchargeEnterprise, domain.SurchargeCompliance}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			require.NoError(t, engine.ToggleItem("contratos"))
			engine.SetUserCount(37)
			engine.SetStorageGB(777)
			require.NoError(t, engine.SetBillingCycle(tt.cycle))
			for _, flag := range tt.flags {
				require.NoError(t, engine.SetSurchargeFlag(flag, true))
			}

			usd := engine.ComputeTotal()
			require.NoError(t, engine.SetCurrency(domain.CurrencyLocal))
			local := engine.ComputeTotal()

			require.True(t, usd.Mul(dec("4000")).Equal(local), "usd %s local %s", usd, local)
			require.Equal(t, "COP", engine.Quote().CurrencyCode)
		})
	}
}

func TestEngine_Multiplier(t *testing.T) {
	tests := []struct {
		name     string
		flags    []domain.Surcharge
		expected string
	}{
		{name: "no surcharges", expected: "1"},
		{name: "enterprise", flags: []domain.Surcharge{domain.SurchargeEnterprise}, expected: "1.3"},
		{name: "dedicated instance", flags: []domain.Surcharge{domain.SurchargeDedicated}, expected: "1.5"},
		{name: "enterprise and compliance", flags: []domain.Surcharge{domain.SurchargeEnterprise, domain.SurchargeCompliance}, expected: "1.56"},
		{name: "all surcharges", flags: domain.Surcharges(), expected: "2.34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			require.NoError(t, engine.ToggleItem("correspondencia"))
			for _, flag := range tt.flags {
				require.NoError(t, engine.SetSurchargeFlag(flag, true))
			}

			requireDecimal(t, tt.expected, engine.Multiplier())

			breakdown := engine.ComputeBreakdown()
			require.True(t, breakdown.Subtotal.Mul(dec(tt.expected)).Equal(breakdown.TotalMonthlyUSD))
		})
	}

	t.Run("disabling restores the base total", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.ToggleItem("correspondencia"))
		base := engine.ComputeTotal()

		require.NoError(t, engine.SetSurchargeFlag(domain.SurchargeDedicated, true))
		require.False(t, base.Equal(engine.ComputeTotal()))

		require.NoError(t, engine.SetSurchargeFlag(domain.SurchargeDedicated, false))
		require.True(t, base.Equal(engine.ComputeTotal()))
	})
}

func TestEngine_ConfiguredSurchargeFactors(t *testing.T) {
	cfg := testConfiguration(t)
	cfg.Surcharges = domain.SurchargeFactors{
		Enterprise:        dec("2"),
		DedicatedInstance: decimal.Zero,
		Compliance:        dec("1.1"),
	}

	engine, err := domain.NewEngine(cfg, testCatalog(), testTiers(), domain.WithLogger(zap.NewNop()))
	require.NoError(t, err)

	for _, flag := range domain.Surcharges() {
		require.NoError(t, engine.SetSurchargeFlag(flag, true))
	}

	// dedicated instance falls back to 1.5
	requireDecimal(t, "3.3", engine.Multiplier())
}

func TestEngine_FlatStorageRate(t *testing.T) {
	cfg := testConfiguration(t)
	cfg.Storage.Scale = domain.Scale{}
	cfg.Storage.FlatPricePerGB = decimal.NewNullDecimal(dec("0.5"))

	engine, err := domain.NewEngine(cfg, testCatalog(), testTiers(), domain.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	engine.SetStorageGB(300)

	breakdown := engine.ComputeBreakdown()
	require.Equal(t, domain.StorageFlat, breakdown.StorageMode)
	require.Equal(t, int64(200), breakdown.BillableStorageGB)
	requireDecimal(t, "100", breakdown.StorageCost)
	require.Empty(t, breakdown.StorageBands)
}

func TestEngine_MissingTierContributesZero(t *testing.T) {
	publisher := new(mockPublisher)
	publisher.On("Publish", domain.EventItemToggled, mock.Anything).Return()
	publisher.On("Publish", domain.EventLookupWarning, mock.MatchedBy(func(data map[string]interface{}) bool {
		return data["item_id"] == "medida" && data["tier"] == "ghost"
	})).Return()

	engine := newTestEngine(t, domain.WithEventPublisher(publisher))
	require.NoError(t, engine.ToggleItem("medida"))
	require.NoError(t, engine.ToggleItem("contratos"))

	breakdown := engine.ComputeBreakdown()
	requireDecimal(t, "80", breakdown.ModulesCost)
	require.Len(t, breakdown.Modules, 2)
	require.Len(t, breakdown.Warnings, 1)
	require.Equal(t, "medida", breakdown.Warnings[0].ItemID)
	require.Equal(t, "ghost", breakdown.Warnings[0].Tier)
	require.Contains(t, breakdown.Warnings[0].String(), "ghost")

	// the item is calculable, so it still counts as a calculable selection
	require.True(t, engine.HasCalculableSelection())

	// the warning is published on selection, not on every computation
	engine.ComputeTotal()
	engine.ComputeOriginalAnnualTotal()
	engine.Quote()
	publisher.AssertNumberOfCalls(t, "Publish", 3)
	require.Len(t, filterEvents(publisher, domain.EventLookupWarning), 1)
}

func filterEvents(publisher *mockPublisher, eventType string) []mock.Call {
	var calls []mock.Call
	for _, call := range publisher.Calls {
		if call.Arguments.String(0) == eventType {
			calls = append(calls, call)
		}
	}
	return calls
}

func TestEngine_Quote(t *testing.T) {
	engine := newTestEngine(t, domain.WithSessionID("quote-session"))
	require.NoError(t, engine.ToggleItem("correspondencia"))
	engine.SetUserCount(10)
	engine.SetStorageGB(125)
	require.NoError(t, engine.SetBillingCycle(domain.BillingAnnual))
	require.NoError(t, engine.SetCurrency(domain.CurrencyLocal))

	quote := engine.Quote()
	require.Equal(t, "quote-session", quote.SessionID)
	require.True(t, quote.Calculable)
	require.Equal(t, domain.BillingAnnual, quote.BillingCycle)
	require.Equal(t, domain.CurrencyLocal, quote.Currency)
	require.Equal(t, "COP", quote.CurrencyCode)
	require.Equal(t, int64(10), quote.UserCount)
	require.Equal(t, int64(125), quote.StorageGB)
	requireDecimal(t, "8160000", quote.Total)
	requireDecimal(t, "9600000", quote.OriginalTotal)
	require.True(t, quote.Total.Equal(engine.ComputeTotal()))
}

func TestEngine_UserCostFollowsScale(t *testing.T) {
	engine := newTestEngine(t)

	// Scenario A: a single 10-user band at 5 billed for 15 users.
	engine.SetUserCount(15)
	requireDecimal(t, "75", engine.UserCost())

	breakdown := engine.ComputeBreakdown()
	require.Len(t, breakdown.UserBands, 2)
	require.True(t, breakdown.UserBands[1].Open)
}
