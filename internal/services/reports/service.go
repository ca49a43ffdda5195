// Package reports turns a books file into a DGII submission file and,
// optionally, delivers it.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/fiscal/ncf"
	"dgii_fiscal/internal/fiscal/report"
	"dgii_fiscal/internal/metrics"
	"dgii_fiscal/internal/ports"
	"dgii_fiscal/internal/services/transactions"
)

var periodRe = regexp.MustCompile(`^\d{4}(0[1-9]|1[0-2])$`)

type Request struct {
	Kind    report.Kind
	RNC     string
	Period  string
	Source  string
	Publish bool
}

type Result struct {
	Kind     report.Kind    `json:"kind"`
	FileName string         `json:"file_name"`
	Location string         `json:"location,omitempty"`
	Lines    int            `json:"lines"`
	Summary  report.Summary `json:"summary"`
	Warnings []string       `json:"warnings,omitempty"`
	Body     string         `json:"-"`
}

type Service struct {
	Books     *transactions.Service
	Publisher ports.Publisher
	Metrics   *metrics.Metrics
}

func NewService(books *transactions.Service, pub ports.Publisher, m *metrics.Metrics) *Service {
	return &Service{Books: books, Publisher: pub, Metrics: m}
}

// Generate renders one report. Bad receipts and unusable rows become
// warnings; only an invalid filer, period or source fails the call.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	res := Result{Kind: req.Kind}
	if !identifier.Validate(req.RNC) {
		return res, fmt.Errorf("invalid filer identifier %q", req.RNC)
	}
	if !periodRe.MatchString(req.Period) {
		return res, fmt.Errorf("period must be YYYYMM, got %q", req.Period)
	}

	book, err := s.Books.Load(ctx, req.Source)
	if err != nil {
		return res, fmt.Errorf("load books: %w", err)
	}
	res.Warnings = append(res.Warnings, book.Skipped...)
	for i, tx := range book.Transactions {
		if !ncf.ValidateReceiptNumber(tx.NCF) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("transaction %d: receipt %q is not a valid NCF", i+1, tx.NCF))
		}
		if tx.CounterpartyID != "" && !identifier.Validate(tx.CounterpartyID) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("transaction %d: counterparty %q fails the check digit", i+1, tx.CounterpartyID))
		}
	}

	body, err := report.Render(req.Kind, report.Input{
		RNC:          req.RNC,
		Period:       req.Period,
		Transactions: book.Transactions,
		Payroll:      book.Payroll,
	})
	if err != nil {
		return res, err
	}
	res.Body = body
	res.FileName = report.FileName(req.Kind, req.RNC, req.Period)
	res.Summary = report.SummarizeReport(book.Transactions)
	if req.Kind == report.KindPayroll {
		res.Summary.Count = len(book.Payroll)
	}
	res.Lines = countLines(body)

	if req.Publish {
		if s.Publisher == nil {
			return res, errors.New("no report publisher configured")
		}
		loc, err := s.Publisher.Publish(ctx, res.FileName, []byte(body))
		if err != nil {
			return res, fmt.Errorf("publish %s: %w", res.FileName, err)
		}
		res.Location = loc
	}
	if s.Metrics != nil {
		s.Metrics.Reports.WithLabelValues(string(req.Kind)).Inc()
	}
	log.Printf("[REPORT][DONE] kind=%s rnc=%s period=%s lines=%d warnings=%d location=%q",
		req.Kind, req.RNC, req.Period, res.Lines, len(res.Warnings), res.Location)
	return res, nil
}

func countLines(body string) int {
	if body == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(body); i++ {
		if body[i] == '\n' {
			n++
		}
	}
	return n
}
