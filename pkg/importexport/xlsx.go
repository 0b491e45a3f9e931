package importexport

import (
	"bytes"
	"fmt"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of a workbook. Columns A to D hold question,
// answer, category and tags; a header row is skipped.
func ParseXLSX(data []byte) ([]Card, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows of %q: %w", sheets[0], err)
	}
	cards, skipped := cardsFromRows(rows)
	return cards, skipped, nil
}

// BuildExportXLSX writes terms into a single-sheet workbook.
func BuildExportXLSX(terms []*db.Term) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Question", "Answer", "Category", "Tags"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, term := range terms {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{term.Question, term.Answer, termCategory(term), termTags(term)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
