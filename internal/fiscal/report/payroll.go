package report

import (
	"fmt"
	"strings"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/models"
)

// RenderPayroll emits comment lines when there is nothing to report, and
// otherwise one identifier|type|period|gross|isr line per employee. This is a
// local layout, not the TSS T-REGISTRO record format.
func RenderPayroll(rnc, period string, entries []models.PayrollEntry) string {
	if len(entries) == 0 {
		return joinLines([]string{
			"# Reporte de nómina",
			fmt.Sprintf("# RNC: %s", identifier.Digits(rnc)),
			fmt.Sprintf("# Período: %s", period),
			"# Sin datos de nómina para el período",
		})
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		id := identifier.Digits(e.EmployeeID)
		idType := "2"
		if len(id) == identifier.BusinessLength {
			idType = "1"
		}
		p := e.Period
		if p == "" {
			p = period
		}
		lines = append(lines, strings.Join([]string{
			id, idType, p, money(e.GrossSalary), money(e.ISRWithheld),
		}, "|"))
	}
	return joinLines(lines)
}
