package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteProducts.
const SheetName = "Products"

var productHeader = []string{
	"ID", "Title", "Description", "Price", "Active",
	"Category ID", "Subcategory ID", "Seller Email", "Created At",
}

var ErrMissingColumn = errors.New("required column missing")

// ProductRow is one importable row. Unknown columns are ignored.
type ProductRow struct {
	Line          int
	Title         string
	Description   string
	Price         float64
	Active        bool
	CategoryID    *uint
	SubCategoryID *uint
	SellerEmail   string
}

// WriteProducts writes products as an XLSX workbook with a header row.
func WriteProducts(w io.Writer, products []model.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(productHeader))
	for i, h := range productHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.ID,
			p.Title,
			p.Description,
			p.Price,
			strconv.FormatBool(p.Active),
			optionalCell(p.CategoryID),
			optionalCell(p.SubCategoryID),
			p.SellerEmail,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}

	return f.Write(w)
}

func optionalCell(id *uint) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

// ReadProducts parses the first worksheet of an XLSX workbook. Columns are
// matched by header name, case-insensitively; Title and Price are required.
// Blank rows are skipped.
func ReadProducts(r io.Reader) ([]ProductRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no data found in XLSX file")
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"title", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var products []ProductRow
	for i, row := range rows[1:] {
		line := i + 2
		title := cell(row, "title")
		if title == "" && cell(row, "price") == "" {
			continue
		}

		price, err := strconv.ParseFloat(cell(row, "price"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", line, cell(row, "price"))
		}

		active := true
		if raw := cell(row, "active"); raw != "" {
			active, err = parseFlag(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid active flag %q", line, raw)
			}
		}

		categoryID, err := parseOptionalID(cell(row, "category id"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid category id: %w", line, err)
		}
		subCategoryID, err := parseOptionalID(cell(row, "subcategory id"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid subcategory id: %w", line, err)
		}

		products = append(products, ProductRow{
			Line:          line,
			Title:         title,
			Description:   cell(row, "description"),
			Price:         price,
			Active:        active,
			CategoryID:    categoryID,
			SubCategoryID: subCategoryID,
			SellerEmail:   cell(row, "seller email"),
		})
	}

	return products, nil
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func parseOptionalID(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	id := uint(n)
	return &id, nil
}
