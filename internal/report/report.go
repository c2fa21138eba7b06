// Package report renders a forecast run as a downloadable PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight

	maxImportanceRows = 15
)

// Generate renders the run's summary, scenario, ranked counties and the
// model's feature importances.
func Generate(run domain.ForecastRun, importances []domain.FeatureImportance) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle("County Disaster Loss Forecast", true)
	pdf.SetCreationDate(run.GeneratedAt)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Run %s  |  Page %d/{nb}", run.ID, pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	r := &pdfReport{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.addSummary(run)
	r.addScenario(run)
	r.addTopCounties(run)
	r.addImportances(importances)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *pdfReport) heading(text string) {
	r.pdf.Ln(6)
	r.pdf.SetFont("Arial", "B", 13)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, text, "B", 1, "L", false, 0, "")
	r.pdf.Ln(2)
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) keyValue(key, value string) {
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.CellFormat(60, 6, key, "", 0, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.CellFormat(contentWidth-60, 6, r.tr(value), "", 1, "L", false, 0, "")
}

func (r *pdfReport) addSummary(run domain.ForecastRun) {
	r.pdf.AddPage()
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, "County Disaster Loss Forecast", "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.CellFormat(contentWidth, 6, "Generated "+run.GeneratedAt.Format("2 January 2006 15:04 MST"), "", 1, "L", false, 0, "")

	r.heading("Summary")
	s := run.Summary
	r.keyValue("Total predicted loss", Currency(s.TotalLoss))
	r.keyValue("Baseline loss", Currency(s.BaselineTotal))
	r.keyValue("Change vs baseline", Currency(s.TotalLoss-s.BaselineTotal))
	r.keyValue("Average per county", Currency(s.MeanLoss))
	r.keyValue("Counties", Count(s.Counties))

	regions, states := "All", "All"
	if len(run.Selection.Regions) > 0 {
		regions = strings.Join(run.Selection.Regions, ", ")
	}
	if len(run.Selection.States) > 0 {
		states = strings.Join(run.Selection.States, ", ")
	}
	r.keyValue("Regions", regions)
	r.keyValue("States", states)
}

func (r *pdfReport) addScenario(run domain.ForecastRun) {
	title := "Scenario"
	if run.Preset != "" {
		title += ": " + run.Preset
	}
	r.heading(r.tr(title))

	colWidth := contentWidth / 3
	for _, g := range domain.HazardGroups {
		r.pdf.SetFont("Arial", "B", 10)
		r.pdf.CellFormat(contentWidth, 6, r.tr(string(g)), "", 1, "L", false, 0, "")
		r.pdf.SetFont("Arial", "", 9)

		col := 0
		for _, h := range domain.AllHazards() {
			if h.Group() != g {
				continue
			}
			m, ok := run.Multipliers[h.Column()]
			if !ok {
				m = 1
			}
			ln := 0
			if col == 2 {
				ln = 1
			}
			if m != 1 {
				r.pdf.SetTextColor(180, 40, 40)
			}
			r.pdf.CellFormat(colWidth, 5, fmt.Sprintf("%s  %s", h.Label(), Multiplier(m)), "", ln, "L", false, 0, "")
			r.pdf.SetTextColor(50, 50, 50)
			col = (col + 1) % 3
		}
		if col != 0 {
			r.pdf.Ln(5)
		}
	}
}

func (r *pdfReport) addTopCounties(run domain.ForecastRun) {
	r.heading(fmt.Sprintf("Top %d Counties by Predicted Loss", len(run.Top)))

	widths := []float64{12, 58, 30, 40, 40}
	headers := []string{"#", "County", "State", "Predicted", "Change"}

	r.pdf.SetFillColor(230, 236, 245)
	r.pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 10)
	for i, c := range run.Top {
		fill := i%2 == 1
		r.pdf.SetFillColor(247, 249, 252)
		r.pdf.CellFormat(widths[0], 6, fmt.Sprint(c.Rank), "1", 0, "L", fill, 0, "")
		r.pdf.CellFormat(widths[1], 6, r.tr(c.County), "1", 0, "L", fill, 0, "")
		r.pdf.CellFormat(widths[2], 6, r.tr(c.State), "1", 0, "L", fill, 0, "")
		r.pdf.CellFormat(widths[3], 6, Currency(c.Predicted), "1", 0, "R", fill, 0, "")
		r.pdf.CellFormat(widths[4], 6, Currency(c.Delta), "1", 1, "R", fill, 0, "")
	}
	if len(run.Top) == 0 {
		r.pdf.CellFormat(contentWidth, 6, "No counties match the selected filters.", "", 1, "L", false, 0, "")
	}
}

func (r *pdfReport) addImportances(importances []domain.FeatureImportance) {
	if len(importances) == 0 {
		return
	}
	r.heading("Feature Importance")

	rows := importances
	if len(rows) > maxImportanceRows {
		rows = rows[:maxImportanceRows]
	}
	maxWeight := rows[0].Weight
	for _, fi := range rows {
		if fi.Weight > maxWeight {
			maxWeight = fi.Weight
		}
	}

	const labelWidth, valueWidth = 55.0, 20.0
	barSpace := contentWidth - labelWidth - valueWidth
	r.pdf.SetFillColor(70, 110, 170)
	for _, fi := range rows {
		x, y := r.pdf.GetXY()
		r.pdf.CellFormat(labelWidth, 6, r.tr(fi.Label), "", 0, "L", false, 0, "")
		if maxWeight > 0 && fi.Weight > 0 {
			r.pdf.Rect(x+labelWidth, y+1, barSpace*fi.Weight/maxWeight, 4, "F")
		}
		r.pdf.SetX(x + labelWidth + barSpace)
		r.pdf.CellFormat(valueWidth, 6, fmt.Sprintf("%.3f", fi.Weight), "", 1, "R", false, 0, "")
	}
}
