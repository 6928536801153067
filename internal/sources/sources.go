// Package sources reads raw price-list rows from spreadsheets, CSV files and
// the price_list_rows table.
package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

// Source yields the raw rows of one price list.
type Source interface {
	Name() string
	Rows(ctx context.Context) ([]catalog.RawRow, error)
}

// File reads a price list from disk, picking the format by extension.
type File struct {
	Path  string
	Sheet string
}

func (f File) Name() string { return filepath.Base(f.Path) }

func (f File) Rows(ctx context.Context) ([]catalog.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatFor(f.Path)
	if err != nil {
		return nil, err
	}

	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCatalogUnavailable, err, "open price list").
			WithDetails(map[string]string{"path": f.Path})
	}
	defer fh.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(fh, CSVOptions{})
	default:
		return ReadXLSX(fh, f.Sheet)
	}
}

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// FormatFor maps a file extension to a supported format.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xls":
		return "", pkgerrors.New(pkgerrors.CodeValidation, "legacy .xls workbooks are not supported; save the price list as .xlsx or .csv").
			WithDetails(map[string]string{"path": path})
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported price list format %q", filepath.Ext(path))).
		WithDetails(map[string]string{"path": path})
}

// rowsFromTable keys every record by the trimmed header cells. Cells beyond
// the header are ignored and missing trailing cells are left absent.
func rowsFromTable(table [][]string) []catalog.RawRow {
	if len(table) == 0 {
		return nil
	}
	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	rows := make([]catalog.RawRow, 0, len(table)-1)
	for _, record := range table[1:] {
		if blankRecord(record) {
			continue
		}
		row := make(catalog.RawRow, len(headers))
		for j, cell := range record {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			row[headers[j]] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
