package quiz_test

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lop-hoc/lophoc-server/internal/quiz"
)

func TestWriteXLSX(t *testing.T) {
	bank := []quiz.Question{
		{Question: "Tính $2+2$", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1, Explanation: "2+2=4"},
		{Question: "Tính $3*3$", Options: []string{"6", "8", "9", "12"}, CorrectIndex: 2, Explanation: "3*3=9"},
	}

	buf, err := quiz.WriteXLSX(bank)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want 3 (header + 2 questions)", len(rows))
	}
	if rows[1][1] != "Tính $2+2$" {
		t.Errorf("question cell = %q, want the raw question text", rows[1][1])
	}
	if rows[1][6] != "B" {
		t.Errorf("correct cell = %q, want B", rows[1][6])
	}
	if rows[2][6] != "C" {
		t.Errorf("correct cell = %q, want C", rows[2][6])
	}
}

func TestWriteXLSX_EmptyBank(t *testing.T) {
	buf, err := quiz.WriteXLSX(nil)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("workbook should still contain the header sheet")
	}
}
