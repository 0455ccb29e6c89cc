package quiz

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders a full question bank as a spreadsheet for offline
// curation: one row per question with its four options, the correct answer,
// and the explanation.
func WriteXLSX(bank []Question) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"#", "Question", "Option A", "Option B", "Option C", "Option D", "Correct", "Explanation"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	letters := []string{"A", "B", "C", "D"}
	for row, q := range bank {
		correct := ""
		if q.CorrectIndex >= 0 && q.CorrectIndex < len(letters) {
			correct = letters[q.CorrectIndex]
		}
		values := []any{row + 1, q.Question}
		for i := 0; i < 4; i++ {
			opt := ""
			if i < len(q.Options) {
				opt = q.Options[i]
			}
			values = append(values, opt)
		}
		values = append(values, correct, q.Explanation)

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
