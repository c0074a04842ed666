package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/tarifa/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustScale(t *testing.T, bands ...domain.Band) domain.Scale {
	t.Helper()
	scale, err := domain.NewScale(bands)
	require.NoError(t, err)
	return scale
}

func TestScale_Evaluate(t *testing.T) {
	scale := mustScale(t,
		domain.Band{UpTo: 10, UnitPrice: dec("10")},
		domain.Band{UpTo: 50, UnitPrice: dec("8")},
		domain.Band{UpTo: 100, UnitPrice: dec("6")},
	)

	tests := []struct {
		name     string
		quantity int64
		expected string
	}{
		{name: "zero quantity costs nothing", quantity: 0, expected: "0"},
		{name: "negative quantity costs nothing", quantity: -5, expected: "0"},
		{name: "inside first band", quantity: 7, expected: "70"},
		{name: "exactly at first bound stays in first band", quantity: 10, expected: "100"},
		{name: "one unit past first bound", quantity: 11, expected: "108"},
		{name: "spans all bands", quantity: 100, expected: "720"},
		{name: "remainder billed at last band price", quantity: 130, expected: "900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, dec(tt.expected).Equal(scale.Cost(tt.quantity)),
				"expected %s, got %s", tt.expected, scale.Cost(tt.quantity))
		})
	}
}

func TestScale_Evaluate_BandLines(t *testing.T) {
	scale := mustScale(t,
		domain.Band{UpTo: 10, UnitPrice: dec("5")},
		domain.Band{UpTo: 20, UnitPrice: dec("4")},
	)

	total, lines := scale.Evaluate(25)

	require.True(t, dec("110").Equal(total))
	require.Len(t, lines, 3)

	require.Equal(t, int64(0), lines[0].From)
	require.Equal(t, int64(10), lines[0].UpTo)
	require.Equal(t, int64(10), lines[0].Units)
	require.False(t, lines[0].Open)

	require.Equal(t, int64(10), lines[1].From)
	require.Equal(t, int64(10), lines[1].Units)
	require.True(t, dec("40").Equal(lines[1].Subtotal))

	require.True(t, lines[2].Open)
	require.Equal(t, int64(20), lines[2].From)
	require.Equal(t, int64(5), lines[2].Units)
	require.True(t, dec("4").Equal(lines[2].UnitPrice))
}

func TestScale_ScenarioA_OpenTopTier(t *testing.T) {
	scale := mustScale(t, domain.Band{UpTo: 10, UnitPrice: dec("5")})

	require.True(t, dec("75").Equal(scale.Cost(15)))
}

func TestScale_Properties(t *testing.T) {
	scale := mustScale(t,
		domain.Band{UpTo: 5, UnitPrice: dec("12.5")},
		domain.Band{UpTo: 25, UnitPrice: dec("9")},
		domain.Band{UpTo: 60, UnitPrice: dec("7.25")},
	)

	t.Run("cost of zero is zero", func(t *testing.T) {
		require.True(t, scale.Cost(0).IsZero())
	})

	t.Run("non-decreasing and unit steps equal the band price", func(t *testing.T) {
		previous := scale.Cost(0)
		for q := int64(1); q <= 200; q++ {
			current := scale.Cost(q)
			require.True(t, current.GreaterThanOrEqual(previous), "cost decreased at %d", q)

			var expectedStep decimal.Decimal
			switch {
			case q <= 5:
				expectedStep = dec("12.5")
			case q <= 25:
				expectedStep = dec("9")
			default:
				expectedStep = dec("7.25")
			}
			require.True(t, expectedStep.Equal(current.Sub(previous)), "unexpected marginal cost at %d", q)
			previous = current
		}
	})

	t.Run("marginal cost above the top bound is the last band price", func(t *testing.T) {
		above := scale.Cost(1000).Sub(scale.Cost(999))
		require.True(t, dec("7.25").Equal(above))
	})
}

func TestNewScale_Validation(t *testing.T) {
	tests := []struct {
		name  string
		bands []domain.Band
	}{
		{
			name:  "non-increasing bounds",
			bands: []domain.Band{{UpTo: 10, UnitPrice: dec("1")}, {UpTo: 10, UnitPrice: dec("1")}},
		},
		{
			name:  "zero bound",
			bands: []domain.Band{{UpTo: 0, UnitPrice: dec("1")}},
		},
		{
			name:  "negative price",
			bands: []domain.Band{{UpTo: 10, UnitPrice: dec("-1")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewScale(tt.bands)
			require.Error(t, err)
			require.ErrorIs(t, err, domain.ErrConfiguration)

			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			require.NotEmpty(t, cfgErr.Field)
		})
	}

	t.Run("empty scale is allowed", func(t *testing.T) {
		scale, err := domain.NewScale(nil)
		require.NoError(t, err)
		require.Equal(t, 0, scale.Len())
		require.True(t, scale.Cost(100).IsZero())
	})
}
