package main

import (
	"fmt"
	"strconv"
	"strings"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/fiscal/ncf"
	"dgii_fiscal/internal/fiscal/tax"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// checkCmd groups the offline validators; none of them needs a connection.
func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate identifiers and receipts, compute ITBIS",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "id VALUE...",
		Short: "Validate RNCs and cédulas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bad := 0
			for _, v := range args {
				ok := identifier.Validate(v)
				if !ok {
					bad++
				}
				fmt.Printf("%-15s %-9s %-15s valid=%t\n", v, identifier.KindOf(v), identifier.Format(v), ok)
			}
			if bad > 0 {
				return fmt.Errorf("%d invalid identifier(s)", bad)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ncf VALUE...",
		Short: "Validate receipt numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bad := 0
			for _, v := range args {
				v = strings.ToUpper(strings.TrimSpace(v))
				dt, seq, ok := ncf.ParseReceiptNumber(v)
				if !ok {
					bad++
					fmt.Printf("%-13s invalid\n", v)
					continue
				}
				fmt.Printf("%-13s %s seq=%d (%s)\n", v, dt.Key, seq, dt.Description)
			}
			if bad > 0 {
				return fmt.Errorf("%d invalid receipt(s)", bad)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ncf-gen TYPE SEQUENCE",
		Short: "Build a receipt number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || seq < 0 {
				return fmt.Errorf("bad sequence %q", args[1])
			}
			fmt.Println(ncf.GenerateReceiptNumber(args[0], seq))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ncf-types",
		Short: "List receipt document types",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, dt := range ncf.DocumentTypes() {
				fmt.Printf("%-15s %s  %s\n", dt.Key, dt.Prefix, dt.Description)
			}
		},
	})

	var gross bool
	itbis := &cobra.Command{
		Use:   "itbis AMOUNT",
		Short: "Split an amount into subtotal, ITBIS and total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("bad amount %q", args[0])
			}
			b := tax.FromSubtotal(amt)
			if gross {
				b = tax.FromGross(amt)
			}
			fmt.Printf("subtotal=%s itbis=%s total=%s\n",
				b.Subtotal.StringFixed(tax.Places), b.Tax.StringFixed(tax.Places), b.Total.StringFixed(tax.Places))
			return nil
		},
	}
	itbis.Flags().BoolVar(&gross, "gross", false, "AMOUNT already includes ITBIS")
	cmd.AddCommand(itbis)

	return cmd
}
