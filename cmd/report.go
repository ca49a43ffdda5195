package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dgii_fiscal/internal/fiscal/report"
	"dgii_fiscal/internal/services/reports"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		kind, rnc, period, source, out string
		publish                        bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a 606, 607 or payroll file from a books CSV/XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := report.ParseKind(kind)
			if err != nil {
				return err
			}
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Config.Close(context.Background())

			res, err := a.Reports.Generate(cmd.Context(), reports.Request{
				Kind: k, RNC: rnc, Period: period, Source: source, Publish: publish,
			})
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(os.Stderr, "⚠️ ", w)
			}

			switch {
			case publish:
				fmt.Printf("%s lines=%d total=%s tax=%s -> %s\n", res.FileName, res.Lines,
					res.Summary.TotalAmount.StringFixed(2), res.Summary.TotalTax.StringFixed(2), res.Location)
			case out == "-":
				fmt.Println(res.Body)
			default:
				if out == "" {
					out = res.FileName
				} else if st, err := os.Stat(out); err == nil && st.IsDir() {
					out = filepath.Join(out, res.FileName)
				}
				if err := os.WriteFile(out, []byte(res.Body), 0o644); err != nil {
					return err
				}
				fmt.Printf("%s lines=%d\n", out, res.Lines)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&kind, "kind", "", "606, 607 or payroll")
	fl.StringVar(&rnc, "rnc", "", "filer RNC or cédula")
	fl.StringVar(&period, "period", "", "fiscal period YYYYMM")
	fl.StringVar(&source, "source", "", "books file (CSV or XLSX)")
	fl.StringVar(&out, "out", "", "output file or directory, - for stdout")
	fl.BoolVar(&publish, "publish", false, "deliver through the configured publisher")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("rnc")
	_ = cmd.MarkFlagRequired("period")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
