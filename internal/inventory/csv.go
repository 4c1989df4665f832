package inventory

import (
	"strconv"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/freshtrackdev/freshtrack/internal/model"
)

// csvHeader is the fixed export column order. Status is derived at encode
// time and ignored on import.
var csvHeader = []string{
	"Name",
	"Category",
	"Barcode",
	"Expiry Date",
	"Purchase Date",
	"Price",
	"Quantity",
	"Supplier",
	"Alert Days",
	"Status",
}

// EncodeCSV renders products as CSV with every field wrapped in double
// quotes. The quoting is deliberately naive: embedded commas or quotes are
// not escaped, to stay byte-compatible with files the original exporter
// produced. DecodeCSV carries the matching assumption.
func EncodeCSV(products []model.Product, now time.Time) string {
	var b strings.Builder
	writeCSVRow(&b, csvHeader)

	for _, p := range products {
		status := Classify(p.ExpiryDate.Time, now)
		writeCSVRow(&b, []string{
			p.Name,
			p.Category,
			strOrEmpty(p.Barcode),
			p.ExpiryDate.Format(types.DateFormat),
			p.PurchaseDate.Format(types.DateFormat),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			strconv.Itoa(p.Quantity),
			strOrEmpty(p.Supplier),
			strconv.Itoa(p.AlertDays),
			string(status.Category),
		})
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// ExportFilename is the download name for an export taken at now,
// e.g. inventory-export-2024-01-05.csv.
func ExportFilename(now time.Time) string {
	return "inventory-export-" + now.Format(types.DateFormat) + ".csv"
}

// DecodeCSV parses CSV content into product drafts, best effort: the
// header row is skipped unvalidated, fields are split positionally,
// missing or malformed fields fall back to defaults, and rows without a
// name are dropped. One dirty row never fails the batch; DecodeCSV has no
// error return by design.
func DecodeCSV(content string, now time.Time) []model.ProductDraft {
	lines := strings.Split(content, "\n")
	if len(lines) <= 1 {
		return nil
	}

	today := model.DateOf(now)
	drafts := make([]model.ProductDraft, 0, len(lines)-1)

	for _, line := range lines[1:] {
		fields := splitCSVRow(line)

		name := fieldAt(fields, 0)
		if name == "" {
			continue
		}

		draft := model.ProductDraft{
			Name:         name,
			Category:     model.DefaultCategory,
			ExpiryDate:   today,
			PurchaseDate: today,
			Quantity:     1,
			AlertDays:    model.DefaultAlertDays,
		}

		if category := fieldAt(fields, 1); category != "" {
			draft.Category = category
		}
		if barcode := fieldAt(fields, 2); barcode != "" {
			draft.Barcode = &barcode
		}
		if date, err := parseDate(fieldAt(fields, 3)); err == nil {
			draft.ExpiryDate = date
		}
		if date, err := parseDate(fieldAt(fields, 4)); err == nil {
			draft.PurchaseDate = date
		}
		if price, err := strconv.ParseFloat(fieldAt(fields, 5), 64); err == nil {
			draft.Price = price
		}
		if quantity, err := strconv.Atoi(fieldAt(fields, 6)); err == nil {
			draft.Quantity = quantity
		}
		if supplier := fieldAt(fields, 7); supplier != "" {
			draft.Supplier = &supplier
		}
		if alertDays, err := strconv.Atoi(fieldAt(fields, 8)); err == nil {
			draft.AlertDays = alertDays
		}
		// Column 9 (Status) is derived data and ignored on import.

		drafts = append(drafts, draft)
	}

	return drafts
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(f)
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func splitCSVRow(line string) []string {
	fields := strings.Split(strings.TrimSuffix(line, "\r"), ",")
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, `"`, "")
	}
	return fields
}

func fieldAt(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func parseDate(s string) (types.Date, error) {
	t, err := time.Parse(types.DateFormat, s)
	if err != nil {
		return types.Date{}, err
	}
	return types.Date{Time: t}, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
