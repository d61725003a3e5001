package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/notegraph/internal/graph"
)

func TestWriteXLSX(t *testing.T) {
	spec, err := graph.NewChart("1,2,3:4,5", "Temps", false)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, spec); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		{"Index", "Series 1", "Series 2"},
		{"0", "1", "4"},
		{"1", "2", "5"},
		{"2", "3"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		if len(rows[i]) != len(want[i]) {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
			continue
		}
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
				break
			}
		}
	}
}

func TestWorkbookSheet(t *testing.T) {
	spec, err := graph.NewChart("7", "", false)
	if err != nil {
		t.Fatal(err)
	}
	f, err := Workbook(spec)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		t.Errorf("sheet %q missing (idx=%d, err=%v)", SheetName, idx, err)
	}
	if v, _ := f.GetCellValue(SheetName, "B2"); v != "7" {
		t.Errorf("B2 = %q, want 7", v)
	}
}

func TestWriteXLSXNoData(t *testing.T) {
	if err := WriteXLSX(&bytes.Buffer{}, graph.ChartSpec{}); !errors.Is(err, graph.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}
