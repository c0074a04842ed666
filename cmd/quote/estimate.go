package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/davidbz/tarifa/internal/document"
	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/format"
	"github.com/davidbz/tarifa/internal/observability"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type estimateOptions struct {
	modules    []string
	users      int64
	storage    int64
	billing    string
	currency   string
	enterprise bool
	dedicated  bool
	compliance bool
	output     string
}

// estimateResult is the JSON rendering of an estimate.
type estimateResult struct {
	Quote          domain.Quote `json:"quote"`
	FormattedTotal string       `json:"formatted_total"`
	Notes          []string     `json:"notes,omitempty"`
}

func newEstimateCmd(root *rootOptions) *cobra.Command {
	opts := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Price a selection of modules",
		Example: `  quote estimate -m correspondencia -m pqrsd --users 40 --storage 500
  quote estimate -m contratos --billing annual --currency local --enterprise`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != outputTable && opts.output != outputJSON {
				return fmt.Errorf("unknown output %q, use %s or %s", opts.output, outputTable, outputJSON)
			}

			return root.invoke(cmd, func(src domain.ConfigSource, formatter *format.Formatter, bus *observability.EventBus) error {
				bundle, err := document.Load(cmd.Context(), src)
				if err != nil {
					return err
				}

				engine, err := bundle.NewEngine(domain.WithEventPublisher(bus))
				if err != nil {
					return err
				}

				notes, err := applyEstimate(cmd, engine, opts)
				if err != nil {
					return err
				}

				return renderEstimate(cmd.OutOrStdout(), opts.output, engine.Quote(), formatter, notes)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.modules, "module", "m", nil, "module identifier to select (repeatable)")
	flags.Int64Var(&opts.users, "users", 0, "number of users")
	flags.Int64Var(&opts.storage, "storage", 0, "storage in GB")
	flags.StringVar(&opts.billing, "billing", "", "billing cycle: monthly or annual")
	flags.StringVar(&opts.currency, "currency", "", "display currency: USD or local")
	flags.BoolVar(&opts.enterprise, "enterprise", false, "apply the enterprise surcharge")
	flags.BoolVar(&opts.dedicated, "dedicated", false, "apply the dedicated instance surcharge")
	flags.BoolVar(&opts.compliance, "compliance", false, "apply the compliance surcharge")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

// applyEstimate replays the flags on the engine and returns notes about
// values that were adjusted.
func applyEstimate(cmd *cobra.Command, engine *domain.Engine, opts *estimateOptions) ([]string, error) {
	var notes []string

	// Selecting is idempotent: a repeated -m must not toggle the module off.
	for _, id := range opts.modules {
		id = strings.TrimSpace(id)
		item, err := engine.Item(id)
		if err != nil {
			return nil, err
		}
		if item.Selected {
			continue
		}
		if err := engine.ToggleItem(id); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("users") {
		if applied := engine.SetUserCount(opts.users); applied != opts.users {
			notes = append(notes, fmt.Sprintf("users adjusted from %d to %d", opts.users, applied))
		}
	}
	if flags.Changed("storage") {
		if applied := engine.SetStorageGB(opts.storage); applied != opts.storage {
			notes = append(notes, fmt.Sprintf("storage adjusted from %d GB to %d GB", opts.storage, applied))
		}
	}

	if opts.billing != "" {
		if err := engine.SetBillingCycle(domain.BillingCycle(strings.ToLower(opts.billing))); err != nil {
			return nil, err
		}
	}

	if opts.currency != "" {
		currency := domain.Currency(strings.ToUpper(opts.currency))
		if strings.EqualFold(opts.currency, engine.Configuration().LocalCurrency) {
			currency = domain.CurrencyLocal
		}
		if err := engine.SetCurrency(currency); err != nil {
			return nil, err
		}
	}

	surcharges := map[domain.Surcharge]bool{
		domain.SurchargeEnterprise: opts.enterprise,
		domain.SurchargeDedicated:  opts.dedicated,
		domain.SurchargeCompliance: opts.compliance,
	}
	for _, flag := range domain.Surcharges() {
		if err := engine.SetSurchargeFlag(flag, surcharges[flag]); err != nil {
			return nil, err
		}
	}

	return notes, nil
}

func renderEstimate(out io.Writer, output string, quote domain.Quote, f *format.Formatter, notes []string) error {
	total, err := f.Amount(quote.Total, quote.CurrencyCode)
	if err != nil {
		return err
	}

	if output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(estimateResult{Quote: quote, FormattedTotal: total, Notes: notes})
	}

	b := quote.Breakdown
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	fmt.Fprintf(w, "Users\t%s\t%s\n", f.Number(quote.UserCount), mustAmount(f, b.UserCost))
	for _, band := range b.UserBands {
		fmt.Fprintf(w, "  %s\t%d x %s\t%s\n", bandLabel(band), band.Units, mustAmount(f, band.UnitPrice), mustAmount(f, band.Subtotal))
	}

	fmt.Fprintf(w, "Modules\t%d\t%s\n", len(b.Modules), mustAmount(f, b.ModulesCost))
	for _, line := range b.Modules {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", line.Name, line.Tier, mustAmount(f, line.Price))
	}

	fmt.Fprintf(w, "Storage\t%s GB (%s billable, %s)\t%s\n",
		f.Number(quote.StorageGB), f.Number(b.BillableStorageGB), b.StorageMode, mustAmount(f, b.StorageCost))
	for _, band := range b.StorageBands {
		fmt.Fprintf(w, "  %s\t%d x %s\t%s\n", bandLabel(band), band.Units, mustAmount(f, band.UnitPrice), mustAmount(f, band.Subtotal))
	}

	fmt.Fprintf(w, "Subtotal\t\t%s\n", mustAmount(f, b.Subtotal))
	fmt.Fprintf(w, "Multiplier\t\tx%s\n", b.Multiplier.String())
	fmt.Fprintf(w, "Monthly\t\t%s\n", mustAmount(f, b.TotalMonthlyUSD))

	if quote.Calculable {
		fmt.Fprintf(w, "Total\t%s, %s\t%s\n", quote.BillingCycle, quote.CurrencyCode, total)
		if quote.BillingCycle == domain.BillingAnnual {
			original, err := f.Amount(quote.OriginalTotal, quote.CurrencyCode)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Before discount\t\t%s\n", original)
		}
	} else {
		fmt.Fprintf(w, "Total\t\tselect at least one priced module\n")
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if len(b.CustomQuote) > 0 {
		names := make([]string, 0, len(b.CustomQuote))
		for _, item := range b.CustomQuote {
			names = append(names, item.Name)
		}
		fmt.Fprintf(out, "\nCustom quote required: %s\n", strings.Join(names, ", "))
	}
	for _, warning := range b.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	for _, note := range notes {
		fmt.Fprintf(out, "note: %s\n", note)
	}

	return nil
}

// mustAmount renders a breakdown figure, which is always in USD.
func mustAmount(f *format.Formatter, amount decimal.Decimal) string {
	s, err := f.Amount(amount, string(domain.CurrencyUSD))
	if err != nil {
		return amount.String()
	}
	return s
}

func bandLabel(band domain.BandCost) string {
	if band.Open {
		return fmt.Sprintf("%d+", band.From)
	}
	return fmt.Sprintf("%d-%d", band.From, band.UpTo)
}
