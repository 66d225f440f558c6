package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"retailbi/pkg/contracts/domain"
)

// columnAliases maps a canonical column role to the header spellings that
// fill it. Matching is case-insensitive and first-alias-wins, so
// InvoiceDate beats a plain Date column when both are present.
var columnAliases = map[string][]string{
	"date":     {"invoicedate", "invoice_date", "date"},
	"quantity": {"quantity", "qty"},
	"price":    {"unitprice", "unit_price", "price"},
	"country":  {"country"},
	"item":     {"description", "stockcode", "item", "stock_code"},
}

// requiredColumns must all resolve for a file to be usable
var requiredColumns = []string{"date", "quantity", "price"}

// dateLayouts are tried in order when coercing invoice dates. Online Retail
// exports use month-first timestamps; ISO layouts cover re-exported data.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006",
	"02-01-2006 15:04",
}

// categoryPattern captures the leading alphabetic token(s) of an item
// description as a coarse category.
var categoryPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]{2,20}`)

// Parser reads retail transaction files and produces cleaned line items.
type Parser struct {
	logger     *slog.Logger
	titleCaser cases.Caser
}

// NewParser creates a transaction file parser
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:     logger,
		titleCaser: cases.Title(language.English),
	}
}

// ParseFile reads a transactions file (.csv or .xlsx) and extracts the
// cleaned line items. Rows that fail coercion or the cleaning filters are
// dropped, not reported individually; the summary counts are logged.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]domain.Transaction, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		return nil, fmt.Errorf("unsupported transactions file type %q (want .csv or .xlsx)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read transactions file: %w", err)
	}

	return p.parseRows(ctx, rows)
}

// readCSVRows reads all rows from a CSV file, tolerating ragged records and
// a UTF-8 BOM.
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		rows = append(rows, record)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

// readXLSXRows reads the first sheet of an Excel workbook
func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// parseRows resolves the header, coerces every data row and applies the
// cleaning filters.
func (p *Parser) parseRows(ctx context.Context, rows [][]string) ([]domain.Transaction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("transactions file is empty")
	}

	columns, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	p.logger.DebugContext(ctx, "resolved transaction columns",
		slog.Any("columns", columns),
		slog.Int("data_rows", len(rows)-1))

	cell := func(row []string, role string) string {
		idx, ok := columns[role]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	transactions := make([]domain.Transaction, 0, len(rows)-1)
	dropped := 0
	for _, row := range rows[1:] {
		date, ok := parseDate(cell(row, "date"))
		if !ok {
			dropped++
			continue
		}
		quantity, qok := parseNumber(cell(row, "quantity"))
		price, pok := parseNumber(cell(row, "price"))
		if !qok || !pok || quantity <= 0 || price <= 0 {
			dropped++
			continue
		}

		country := cell(row, "country")
		if country == "" {
			country = "Unknown"
		} else {
			country = p.titleCaser.String(strings.TrimSpace(country))
		}

		item := cell(row, "item")
		transactions = append(transactions, domain.Transaction{
			InvoiceDate: date,
			Quantity:    quantity,
			UnitPrice:   price,
			Country:     country,
			Item:        item,
			Category:    extractCategory(item),
			Revenue:     quantity * price,
		})
	}

	p.logger.InfoContext(ctx, "parsed transactions",
		slog.Int("kept", len(transactions)),
		slog.Int("dropped", dropped))

	return transactions, nil
}

// resolveColumns maps canonical roles to header positions using the alias
// table. Missing required columns are reported together.
func resolveColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make(map[string]int, len(columnAliases))
	for role, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := byName[alias]; ok {
				columns[role] = idx
				break
			}
		}
	}

	var missing []string
	for _, role := range requiredColumns {
		if _, ok := columns[role]; !ok {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("transactions file must include InvoiceDate/Date, Quantity and UnitPrice/Price columns (missing: %s)",
			strings.Join(missing, ", "))
	}
	return columns, nil
}

// parseDate coerces an invoice date string, trying each supported layout
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseNumber coerces a numeric string, stripping thousands separators
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractCategory derives a coarse category from the leading alphabetic
// tokens of an item description. Descriptions with no usable prefix fall
// into Misc.
func extractCategory(item string) string {
	m := categoryPattern.FindString(item)
	if m == "" {
		return "Misc"
	}
	return strings.TrimSpace(m)
}
