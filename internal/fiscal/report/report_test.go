package report

import (
	"errors"
	"strings"
	"testing"

	"dgii_fiscal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestEmptyInputRendersEmptyString(t *testing.T) {
	assert.Equal(t, "", RenderPurchases(nil))
	assert.Equal(t, "", RenderSales([]models.Transaction{}))
}

func TestRenderPurchases(t *testing.T) {
	txs := []models.Transaction{
		{
			CounterpartyID: "101-01063-2",
			NCF:            "B0100000005",
			Subtotal:       amt("1000"),
			Tax:            amt("180"),
			Total:          amt("1180"),
			PaymentMethod:  "transfer",
			Date:           "2024-03-15",
			PaidAt:         "2024-03-20",
		},
		{
			NCF:      "B1100000001",
			Subtotal: amt("100.01"),
			Date:     "not a date",
			Service:  true,
		},
	}
	out := RenderPurchases(txs)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)

	first := strings.Split(lines[0], "|")
	require.Len(t, first, PurchasesColumns)
	assert.Equal(t, "101010632", first[0])
	assert.Equal(t, "1", first[1])
	assert.Equal(t, "09", first[2])
	assert.Equal(t, "B0100000005", first[3])
	assert.Equal(t, "", first[4])
	assert.Equal(t, "20240315", first[5])
	assert.Equal(t, "20240320", first[6])
	assert.Equal(t, "0.00", first[7])
	assert.Equal(t, "1000.00", first[8])
	assert.Equal(t, "1180.00", first[9])
	assert.Equal(t, "180.00", first[10])
	for i := 11; i < PurchasesColumns-1; i++ {
		assert.Equal(t, "0.00", first[i], "column %d", i+1)
	}
	assert.Equal(t, "2", first[22])

	second := strings.Split(lines[1], "|")
	require.Len(t, second, PurchasesColumns)
	assert.Equal(t, "", second[0])
	assert.Equal(t, "2", second[1])
	assert.Equal(t, "", second[5])
	assert.Equal(t, "", second[6])
	assert.Equal(t, "100.01", second[7])
	assert.Equal(t, "0.00", second[8])
	assert.Equal(t, "118.02", second[9])
	assert.Equal(t, "18.01", second[10])
	assert.Equal(t, "1", second[22])
}

func TestRenderSales(t *testing.T) {
	txs := []models.Transaction{
		{Subtotal: amt("100"), Tax: amt("18"), Date: "2024-01-02T10:00:00Z", NCF: "B0200000001"},
		{CounterpartyID: "00113918205", Total: amt("118"), Date: "02/01/2024"},
		{CounterpartyID: "131246796", Subtotal: amt("50")},
	}
	lines := strings.Split(RenderSales(txs), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "|3|B0200000001||20240102|18.00|100.00", lines[0])
	assert.Equal(t, "00113918205|1|||20240102|18.00|100.00", lines[1])
	assert.Equal(t, "131246796|1||||9.00|50.00", lines[2])
	for _, l := range lines {
		assert.Len(t, strings.Split(l, "|"), SalesColumns)
	}
}

func TestRenderPayroll(t *testing.T) {
	empty := RenderPayroll("101-01063-2", "202401", nil)
	for _, l := range strings.Split(empty, "\n") {
		assert.True(t, strings.HasPrefix(l, "#"), l)
	}
	assert.Contains(t, empty, "101010632")

	out := RenderPayroll("101010632", "202401", []models.PayrollEntry{
		{EmployeeID: "001-1391820-5", GrossSalary: decimal.NewFromInt(45000), ISRWithheld: decimal.RequireFromString("1234.5")},
	})
	assert.Equal(t, "00113918205|2|202401|45000.00|1234.50", out)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "20241231", FormatDate("2024-12-31"))
	assert.Equal(t, "20241231", FormatDate("2024-12-31 23:59:59"))
	assert.Equal(t, "20241231", FormatDate("20241231"))
	assert.Equal(t, "", FormatDate(""))
	assert.Equal(t, "", FormatDate("31st December"))
}

func TestPaymentMethodCode(t *testing.T) {
	assert.Equal(t, "1", PaymentMethodCode("cash"))
	assert.Equal(t, "3", PaymentMethodCode(" Credit_Card "))
	assert.Equal(t, "7", PaymentMethodCode("mixed"))
	assert.Equal(t, "1", PaymentMethodCode(""))
	assert.Equal(t, "1", PaymentMethodCode("bitcoin"))
}

func TestSummarizeReport(t *testing.T) {
	s := SummarizeReport([]models.Transaction{
		{Total: amt("118"), Tax: amt("18")},
		{Total: amt("59")},
		{},
	})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "177.00", s.TotalAmount.StringFixed(2))
	assert.Equal(t, "18.00", s.TotalTax.StringFixed(2))

	zero := SummarizeReport(nil)
	assert.Equal(t, 0, zero.Count)
	assert.True(t, zero.TotalAmount.IsZero())
}

func TestRenderDispatchAndNames(t *testing.T) {
	k, err := ParseKind("ventas")
	require.NoError(t, err)
	assert.Equal(t, KindSales, k)

	_, err = ParseKind("608")
	assert.True(t, errors.Is(err, ErrUnknownReport))

	out, err := Render(KindSales, Input{})
	require.NoError(t, err)
	assert.Equal(t, "", out)

	_, err = Render(Kind("x"), Input{})
	assert.ErrorIs(t, err, ErrUnknownReport)

	assert.Equal(t, "DGII_F_606_101010632_202403.TXT", FileName(KindPurchases, "101-01063-2", "202403"))
	assert.Equal(t, "DGII_T_REGISTRO_101010632_202403.TXT", FileName(KindPayroll, "101010632", "202403"))
}
