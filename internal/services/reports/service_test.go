package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"dgii_fiscal/internal/fiscal/report"
	"dgii_fiscal/internal/metrics"
	"dgii_fiscal/internal/ports"
	"dgii_fiscal/internal/services/transactions"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filesOpener map[string]string

func (f filesOpener) Open(_ context.Context, p string) (io.ReadCloser, ports.Meta, error) {
	body, ok := f[p]
	if !ok {
		return nil, ports.Meta{}, fmt.Errorf("%s not found", p)
	}
	return io.NopCloser(strings.NewReader(body)), ports.Meta{ContentType: "text/csv"}, nil
}

type memPublisher struct {
	name string
	body string
	err  error
}

func (m *memPublisher) Publish(_ context.Context, name string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.name, m.body = name, string(body)
	return "mem://" + name, nil
}

const salesCSV = "counterparty_id,ncf,subtotal,tax,total,payment_method,date\n" +
	"00113918205,B0100000001,100.00,18.00,118.00,cash,2024-03-05\n" +
	",B0200000002,,,59.00,card,2024-03-06\n" +
	"131246790,X99,10,1.80,11.80,cash,2024-03-07\n"

func newService(pub ports.Publisher) (*Service, *metrics.Metrics) {
	m := metrics.New()
	books := transactions.NewService(filesOpener{
		"sales.csv":   salesCSV,
		"payroll.csv": "employee_id,period,gross_salary,isr_withheld\n00113918205,,50000,1200.50\n",
	})
	return NewService(books, pub, m), m
}

func TestGenerateSales(t *testing.T) {
	pub := &memPublisher{}
	svc, m := newService(pub)

	res, err := svc.Generate(context.Background(), Request{
		Kind: report.KindSales, RNC: "101-01063-2", Period: "202403", Source: "sales.csv", Publish: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "DGII_F_607_101010632_202403.TXT", res.FileName)
	assert.Equal(t, "mem://DGII_F_607_101010632_202403.TXT", res.Location)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, 3, res.Summary.Count)
	assert.Equal(t, "188.80", res.Summary.TotalAmount.StringFixed(2))
	assert.Equal(t, res.Body, pub.body)

	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "X99")
	assert.Contains(t, res.Warnings[1], "131246790")

	first := strings.Split(strings.Split(res.Body, "\n")[0], "|")
	assert.Equal(t, "00113918205", first[0])
	assert.Equal(t, "B0100000001", first[2])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reports.WithLabelValues("607")))
}

func TestGeneratePayroll(t *testing.T) {
	svc, _ := newService(nil)

	res, err := svc.Generate(context.Background(), Request{
		Kind: report.KindPayroll, RNC: "101010632", Period: "202403", Source: "payroll.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Count)
	assert.Equal(t, "00113918205|2|202403|50000.00|1200.50", res.Body)
	assert.Empty(t, res.Location)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, Request{Kind: report.KindSales, RNC: "101010633", Period: "202403", Source: "sales.csv"})
	assert.ErrorContains(t, err, "filer")

	_, err = svc.Generate(ctx, Request{Kind: report.KindSales, RNC: "101010632", Period: "202413", Source: "sales.csv"})
	assert.ErrorContains(t, err, "YYYYMM")

	_, err = svc.Generate(ctx, Request{Kind: report.KindSales, RNC: "101010632", Period: "202403", Source: "nope.csv"})
	assert.ErrorContains(t, err, "load books")

	_, err = svc.Generate(ctx, Request{Kind: "608", RNC: "101010632", Period: "202403", Source: "sales.csv"})
	assert.ErrorIs(t, err, report.ErrUnknownReport)

	_, err = svc.Generate(ctx, Request{Kind: report.KindSales, RNC: "101010632", Period: "202403", Source: "sales.csv", Publish: true})
	assert.ErrorContains(t, err, "publisher")
}

func TestGeneratePublishFailure(t *testing.T) {
	svc, _ := newService(&memPublisher{err: errors.New("disk full")})
	_, err := svc.Generate(context.Background(), Request{
		Kind: report.KindPurchases, RNC: "101010632", Period: "202403", Source: "sales.csv", Publish: true,
	})
	assert.ErrorContains(t, err, "disk full")
}
