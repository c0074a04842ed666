package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Band is one range of a progressive scale. UpTo is the inclusive cumulative
// upper bound of the band.
type Band struct {
	UpTo      int64           `json:"up_to"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BandCost is the priced portion of a quantity that fell into one band.
// Open marks the remainder billed beyond the highest declared bound.
type BandCost struct {
	From      int64           `json:"from"`
	UpTo      int64           `json:"up_to,omitempty"`
	Open      bool            `json:"open,omitempty"`
	Units     int64           `json:"units"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Scale is an ordered, validated progressive price scale.
// The last band's unit price applies to any quantity above the highest bound.
type Scale struct {
	bands []Band
}

// NewScale validates bands and builds a scale. Bounds must be positive and
// strictly increasing; prices must be non-negative. An empty scale is valid.
func NewScale(bands []Band) (Scale, error) {
	var previous int64
	for i, band := range bands {
		if band.UpTo <= previous {
			return Scale{}, NewConfigurationError(
				fmt.Sprintf("bands[%d].up_to", i),
				fmt.Sprintf("bound %d must be greater than %d", band.UpTo, previous),
			)
		}
		if band.UnitPrice.IsNegative() {
			return Scale{}, NewConfigurationError(
				fmt.Sprintf("bands[%d].unit_price", i),
				"price must not be negative",
			)
		}
		previous = band.UpTo
	}

	copied := make([]Band, len(bands))
	copy(copied, bands)
	return Scale{bands: copied}, nil
}

// Len returns the number of declared bands.
func (s Scale) Len() int {
	return len(s.bands)
}

// Bands returns a copy of the declared bands.
func (s Scale) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// Cost returns the price of quantity units.
func (s Scale) Cost(quantity int64) decimal.Decimal {
	cost, _ := s.Evaluate(quantity)
	return cost
}

// Evaluate prices quantity band by band and returns the total with one line
// per band that received units. Non-positive quantities cost zero.
func (s Scale) Evaluate(quantity int64) (decimal.Decimal, []BandCost) {
	total := decimal.Zero
	if quantity <= 0 || len(s.bands) == 0 {
		return total, nil
	}

	lines := make([]BandCost, 0, len(s.bands)+1)
	remaining := quantity
	var previous int64

	for _, band := range s.bands {
		if remaining == 0 {
			break
		}

		consumed := min(remaining, band.UpTo-previous)
		subtotal := band.UnitPrice.Mul(decimal.NewFromInt(consumed))
		total = total.Add(subtotal)
		lines = append(lines, BandCost{
			From:      previous,
			UpTo:      band.UpTo,
			Open:      false,
			Units:     consumed,
			UnitPrice: band.UnitPrice,
			Subtotal:  subtotal,
		})

		remaining -= consumed
		previous = band.UpTo
	}

	if remaining > 0 {
		last := s.bands[len(s.bands)-1]
		subtotal := last.UnitPrice.Mul(decimal.NewFromInt(remaining))
		total = total.Add(subtotal)
		lines = append(lines, BandCost{
			From:      previous,
			UpTo:      0,
			Open:      true,
			Units:     remaining,
			UnitPrice: last.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	return total, lines
}
