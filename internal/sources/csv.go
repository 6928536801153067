package sources

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"

	"github.com/angelmondragon/quotecatalog/internal/catalog"
	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
)

type CSVOptions struct {
	// Comma is the field separator. Zero sniffs ',' or ';' from the header line.
	Comma rune
}

func ReadCSV(r io.Reader, opts CSVOptions) ([]catalog.RawRow, error) {
	br := bufio.NewReader(r)
	comma := opts.Comma
	if comma == 0 {
		comma = sniffSeparator(br)
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price list is not valid csv")
	}
	return rowsFromTable(table), nil
}

// sniffSeparator prefers ';' when the first line holds more semicolons than
// commas, the usual export format of spreadsheets with a decimal comma locale.
func sniffSeparator(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.Count(peek, []byte(";")) > bytes.Count(peek, []byte(",")) {
		return ';'
	}
	return ','
}
