package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davidbz/tarifa/internal/document"
	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/format"
)

func newModulesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the catalog grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.invoke(cmd, func(src domain.ConfigSource, formatter *format.Formatter) error {
				bundle, err := document.Load(cmd.Context(), src)
				if err != nil {
					return err
				}

				tiers := bundle.TierTable()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

				for i, group := range bundle.Group(bundle.Catalog()) {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "%s\n", group.Category.Name)
					fmt.Fprintf(w, "  ID\tNAME\tTIER\tPRICE\n")

					for _, item := range group.Items {
						price := "custom quote"
						if item.Calculable {
							if amount, ok := tiers.Lookup(item.PricingTier); ok {
								price = mustAmount(formatter, amount)
							} else {
								price = "unpriced"
							}
						}
						fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", item.ID, item.Name, item.PricingTier, price)
					}
				}

				return w.Flush()
			})
		},
	}
}
