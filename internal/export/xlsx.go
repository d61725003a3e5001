// Package export writes chart data to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/notegraph/internal/graph"
)

// SheetName is the worksheet holding the data and the chart.
const SheetName = "Chart"

// WriteXLSX writes spec as a workbook: an index column, one column per
// series and a native line chart over those ranges.
func WriteXLSX(w io.Writer, spec graph.ChartSpec) error {
	f, err := Workbook(spec)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook for spec. The caller closes it.
func Workbook(spec graph.ChartSpec) (*excelize.File, error) {
	if !spec.Valid() {
		return nil, graph.ErrNoData
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	if err := fill(f, spec); err != nil {
		f.Close()
		return nil, err
	}
	if err := addChart(f, spec); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fill(f *excelize.File, spec graph.ChartSpec) error {
	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	if err := set(1, 1, "Index"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < spec.MaxLen(); i++ {
		if err := set(1, i+2, i); err != nil {
			return fmt.Errorf("writing index: %w", err)
		}
	}

	for si, s := range spec.Series {
		col := si + 2
		if err := set(col, 1, seriesName(s, si)); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		for i, v := range s.Values {
			if err := set(col, i+2, v); err != nil {
				return fmt.Errorf("writing %s: %w", seriesName(s, si), err)
			}
		}
	}
	return nil
}

func addChart(f *excelize.File, spec graph.ChartSpec) error {
	last := spec.MaxLen() + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", SheetName, last)

	var series []excelize.ChartSeries
	for si := range spec.Series {
		col, err := excelize.ColumnNumberToName(si + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", SheetName, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetName, col, col, last),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
		})
	}

	chart := &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
	if spec.HasTitle() {
		chart.Title = []excelize.RichTextRun{{Text: spec.Title}}
	}

	anchor, err := excelize.CoordinatesToCellName(len(spec.Series)+3, 2)
	if err != nil {
		return err
	}
	if err := f.AddChart(SheetName, anchor, chart); err != nil {
		return fmt.Errorf("adding chart: %w", err)
	}
	return nil
}

func seriesName(s graph.Series, i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("Series %d", i+1)
}
