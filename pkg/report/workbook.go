package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tunogya/salescast/pkg/model"
)

const (
	summarySheet = "Summary"
	dateLayout   = "2006-01-02"
)

// Chart is a caller-held handle to one rendered tier sheet.
// Passing it back to Render or Failed replaces that sheet.
type Chart struct {
	Tier    model.Tier
	Sheet   string
	Points  int
	Renders int
}

// Workbook renders forecast charts into an xlsx file
type Workbook struct {
	f       *excelize.File
	summary int // next free summary row
}

// NewWorkbook creates an empty workbook with a summary sheet
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := []interface{}{"Tier", "Status", "Records", "Forecast Total"}
	for i := 1; i <= model.DefaultHorizon; i++ {
		header = append(header, fmt.Sprintf("Step %d", i))
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return nil, err
	}

	return &Workbook{f: f, summary: 2}, nil
}

// Render draws a tier's series as a line chart. With a non-nil handle the
// previous sheet for that handle is replaced. The returned handle is the one
// to pass on the next render.
func (w *Workbook) Render(h *Chart, tier model.Tier, points []model.PlotPoint) (*Chart, error) {
	sheet, h, err := w.resetSheet(h, tier)
	if err != nil {
		return nil, err
	}

	if err := w.f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Sales", "Forecast"}); err != nil {
		return nil, err
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.Date.Format(dateLayout), p.Sales, p.Forecast}
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	if len(points) > 0 {
		last := len(points) + 1
		chart := &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$B$1", sheet),
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
			}},
			Title: []excelize.RichTextRun{{
				Text: fmt.Sprintf("Sales Prediction for %s Category", tier.Title()),
			}},
			Legend: excelize.ChartLegend{Position: "bottom"},
		}
		if err := w.f.AddChart(sheet, "E2", chart); err != nil {
			return nil, fmt.Errorf("failed to add chart to %s: %w", sheet, err)
		}
	}

	h.Points = len(points)
	return h, nil
}

// Failed replaces a tier's sheet with a failure notice instead of a chart
func (w *Workbook) Failed(h *Chart, tier model.Tier, cause error) (*Chart, error) {
	sheet, h, err := w.resetSheet(h, tier)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Forecast failed for %s category: %v", tier.Title(), cause)
	if err := w.f.SetCellValue(sheet, "A1", msg); err != nil {
		return nil, err
	}
	h.Points = 0
	return h, nil
}

// Summarize appends one summary row per tier result.
// A nil forecast with a nil error is written as "no data".
func (w *Workbook) Summarize(tier model.Tier, records int, f *model.ForecastResult, cause error) error {
	row := []interface{}{tier.Title()}
	switch {
	case cause != nil:
		row = append(row, "failed: "+cause.Error(), records)
	case f == nil:
		row = append(row, "no data", records)
	default:
		row = append(row, "ok", records, f.Total())
		for _, p := range f.Predictions {
			row = append(row, p)
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, w.summary)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(summarySheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	w.summary++
	return nil
}

// SaveAs writes the workbook to a file
func (w *Workbook) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteTo writes the workbook to out
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.f.Close()
}

// resetSheet drops the handle's previous sheet, if any, and creates a fresh one
func (w *Workbook) resetSheet(h *Chart, tier model.Tier) (string, *Chart, error) {
	if h != nil && h.Sheet != "" {
		if err := w.f.DeleteSheet(h.Sheet); err != nil {
			return "", nil, fmt.Errorf("failed to drop sheet %s: %w", h.Sheet, err)
		}
	}
	if h == nil {
		h = &Chart{Tier: tier}
	}
	h.Tier = tier
	h.Sheet = tier.Title()
	h.Renders++

	if _, err := w.f.NewSheet(h.Sheet); err != nil {
		return "", nil, fmt.Errorf("failed to create sheet %s: %w", h.Sheet, err)
	}
	return h.Sheet, h, nil
}
