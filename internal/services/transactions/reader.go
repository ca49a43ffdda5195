// Package transactions loads the books a report is rendered from: CSV or XLSX
// files with a header row, one transaction or payroll entry per row.
package transactions

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"path"
	"strings"

	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/ports"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Book is everything read from one file. Rows that could not be used are
// described in Skipped; they never fail the load.
type Book struct {
	Format       string
	Rows         int
	Transactions []models.Transaction
	Payroll      []models.PayrollEntry
	Skipped      []string
}

type Service struct {
	Opener ports.FileOpener
}

func NewService(opener ports.FileOpener) *Service {
	return &Service{Opener: opener}
}

func (s *Service) Load(ctx context.Context, filePath string) (Book, error) {
	rc, meta, err := s.Opener.Open(ctx, filePath)
	if err != nil {
		return Book{}, err
	}
	defer rc.Close()
	return Read(rc, filePath, meta.ContentType)
}

// Read detects the format from the name or content type, falling back to the
// other reader when the first one fails.
func Read(r io.Reader, filePath, contentType string) (Book, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Book{}, err
	}
	format := detectFormat(filePath, contentType)

	var rows []map[string]string
	switch format {
	case "xlsx":
		rows, err = readXLSXFirstSheet(body)
		if err != nil {
			log.Printf("[TX][XLSX][ERR] %v; fallback to CSV", err)
			rows, err = readCSV(body)
			format = "csv"
		}
	case "csv":
		rows, err = readCSV(body)
	default:
		rows, err = readXLSXFirstSheet(body)
		format = "xlsx"
		if err != nil {
			rows, err = readCSV(body)
			format = "csv"
		}
	}
	if err != nil {
		return Book{}, fmt.Errorf("read %s: %w", filePath, err)
	}

	book := Book{Format: format}
	for i, row := range rows {
		if blank(row) {
			continue
		}
		book.Rows++
		if _, ok := row["employee_id"]; ok {
			p, err := toPayroll(row)
			if err != nil {
				book.Skipped = append(book.Skipped, fmt.Sprintf("row %d: %v", i+2, err))
				continue
			}
			book.Payroll = append(book.Payroll, p)
			continue
		}
		tx, warn := toTransaction(row)
		if warn != "" {
			book.Skipped = append(book.Skipped, fmt.Sprintf("row %d: %s", i+2, warn))
		}
		book.Transactions = append(book.Transactions, tx)
	}
	log.Printf("[TX][DONE] file=%q fmt=%s rows=%d transactions=%d payroll=%d skipped=%d",
		filePath, format, book.Rows, len(book.Transactions), len(book.Payroll), len(book.Skipped))
	return book, nil
}

func readCSV(body []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(body)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if len(header) == 1 && strings.Contains(header[0], ";") {
		return nil, errors.New("semicolon-separated files are not supported")
	}
	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("[TX][CSV][WARN] read row err: %v", err)
			continue
		}
		rows = append(rows, toMap(header, record))
	}
	return rows, nil
}

func readXLSXFirstSheet(body []byte) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	rows := make([]map[string]string, 0, len(all)-1)
	for _, cols := range all[1:] {
		rows = append(rows, toMap(all[0], cols))
	}
	return rows, nil
}

// ---------- helpers ----------

var headerAliases = map[string]string{
	"rnc":            "counterparty_id",
	"rnc_cedula":     "counterparty_id",
	"counterparty":   "counterparty_id",
	"comprobante":    "ncf",
	"monto":          "subtotal",
	"itbis":          "tax",
	"monto_total":    "total",
	"forma_pago":     "payment_method",
	"fecha":          "date",
	"fecha_pago":     "paid_at",
	"tipo":           "kind",
	"empleado":       "employee_id",
	"periodo":        "period",
	"salario":        "gross_salary",
	"isr":            "isr_withheld",
	"isr_retenido":   "isr_withheld",
	"salario_bruto":  "gross_salary",
	"payment":        "payment_method",
	"payment_date":   "paid_at",
	"issue_date":     "date",
	"identifier":     "counterparty_id",
	"receipt_number": "ncf",
}

func headerKey(h string) string {
	k := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	k = strings.Join(strings.Fields(strings.ReplaceAll(k, "-", " ")), "_")
	if alias, ok := headerAliases[k]; ok {
		return alias
	}
	return k
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[headerKey(key)] = strings.TrimSpace(val)
	}
	return m
}

func blank(row map[string]string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func toTransaction(row map[string]string) (models.Transaction, string) {
	var warns []string
	amount := func(key string) decimal.NullDecimal {
		d, err := parseAmount(row[key])
		if err != nil {
			warns = append(warns, fmt.Sprintf("%s %q ignored", key, row[key]))
		}
		return d
	}
	tx := models.Transaction{
		CounterpartyID: row["counterparty_id"],
		NCF:            strings.ToUpper(row["ncf"]),
		Subtotal:       amount("subtotal"),
		Tax:            amount("tax"),
		Total:          amount("total"),
		PaymentMethod:  row["payment_method"],
		Date:           row["date"],
		PaidAt:         row["paid_at"],
		Service:        isService(row["kind"]),
	}
	return tx, strings.Join(warns, "; ")
}

func toPayroll(row map[string]string) (models.PayrollEntry, error) {
	if row["employee_id"] == "" {
		return models.PayrollEntry{}, errors.New("missing employee_id")
	}
	gross, err := parseAmount(row["gross_salary"])
	if err != nil {
		return models.PayrollEntry{}, fmt.Errorf("gross_salary: %w", err)
	}
	isr, err := parseAmount(row["isr_withheld"])
	if err != nil {
		return models.PayrollEntry{}, fmt.Errorf("isr_withheld: %w", err)
	}
	return models.PayrollEntry{
		EmployeeID:  row["employee_id"],
		Period:      row["period"],
		GrossSalary: gross.Decimal,
		ISRWithheld: isr.Decimal,
	}, nil
}

func isService(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "s", "service", "services", "servicio", "servicios":
		return true
	}
	return false
}

// parseAmount reads "1,234.50", "1234,50" or "RD$ 1 234.50". An empty value
// is a valid missing amount.
func parseAmount(s string) (decimal.NullDecimal, error) {
	s = normalizeAmount(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "RD$"), "$")
	s = strings.ReplaceAll(s, " ", "")

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		// the last separator is the decimal one: 1,234.50 or 1.234,50
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		// a lone comma followed by 1-2 digits is a decimal comma; 1,500 is thousands
		if strings.Count(s, ",") == 1 && len(s)-comma-1 >= 1 && len(s)-comma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "xlsx":
		return "xlsx"
	case "csv", "txt":
		return "csv"
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/csv", "application/csv", "text/plain":
		return "csv"
	}
	return ""
}
