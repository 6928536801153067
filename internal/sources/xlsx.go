package sources

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

// ReadXLSX reads one sheet of a workbook; a blank sheet name means the first
// sheet. Cells are read raw so numeric prices keep full precision.
func ReadXLSX(r io.Reader, sheet string) ([]catalog.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price list is not a readable xlsx workbook")
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet not found in workbook").
			WithDetails(map[string]any{"sheet": sheet, "available": f.GetSheetList()})
	}

	table, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read sheet rows")
	}
	return rowsFromTable(table), nil
}
