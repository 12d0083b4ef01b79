package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"kpidash/internal/domain/performance"
	"kpidash/internal/domain/scoring"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Name", 62, "L"},
	{"Role", 28, "L"},
	{"Score", 20, "R"},
	{"KPIs", 24, "R"},
	{"Trend", 24, "C"},
	{"Team", 22, "R"},
}

// RenderScorecard writes d as a one-table PDF scorecard.
func RenderScorecard(w io.Writer, d performance.Dashboard) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Performance scorecard "+d.Label, true)
	pdf.SetCreationDate(d.Window.Start)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Performance Scorecard")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Director: %s", displayName(d.Director))))
	pdf.Ln(6)
	period := d.Label
	if d.Period == performance.PeriodWeek {
		period = fmt.Sprintf("%s (%s)", d.Label, d.MonthLabel)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s, %s to %s", period,
		d.Window.Start.Format("2006-01-02"), d.Window.End.AddDate(0, 0, -1).Format("2006-01-02")))
	pdf.Ln(6)
	mode := "direct reports"
	if d.Transitive {
		mode = "whole subtree"
	}
	pdf.Cell(0, 7, fmt.Sprintf("Team score: %d%% (%s, %s)", d.TeamScore, trendText(d.TeamTrend), mode))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range d.Members {
		team := "-"
		if row.TeamScore != nil {
			team = fmt.Sprintf("%d%%", *row.TeamScore)
		}
		cells := []string{
			tr(displayName(row.Profile)),
			string(row.Profile.Role),
			fmt.Sprintf("%d%%", row.Score.Score),
			fmt.Sprintf("%d/%d", row.Score.ReviewedKPICount, row.Score.TotalKPICount),
			trendText(row.Trend),
			team,
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(d.Members) == 0 {
		pdf.CellFormat(180, 7, "No approved direct reports", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	names := nameIndex(d)
	section(pdf, tr, "Top performers", names, d.Cohort.TopPerformers)
	section(pdf, tr, "Needs attention", names, d.Cohort.NeedsAttention)
	if len(d.Pending) > 0 {
		var ids []string
		for _, p := range d.Pending {
			names[p.ID] = displayName(p)
			ids = append(ids, p.ID)
		}
		section(pdf, tr, "Awaiting approval", names, ids)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string, names map[string]string, ids []string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, title)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	if len(ids) == 0 {
		pdf.Cell(0, 6, "None")
		pdf.Ln(8)
		return
	}
	list := make([]string, 0, len(ids))
	for _, id := range ids {
		list = append(list, names[id])
	}
	pdf.MultiCell(0, 6, tr(strings.Join(list, ", ")), "", "L", false)
	pdf.Ln(2)
}

func nameIndex(d performance.Dashboard) map[string]string {
	names := make(map[string]string, len(d.Members))
	for _, row := range d.Members {
		names[row.Profile.ID] = displayName(row.Profile)
	}
	return names
}

func displayName(p scoring.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Username != "" {
		return p.Username
	}
	return p.ID
}

func trendText(t scoring.Trend) string {
	switch t.Direction {
	case scoring.DirectionUp:
		return fmt.Sprintf("up %d", t.Magnitude)
	case scoring.DirectionDown:
		return fmt.Sprintf("down %d", t.Magnitude)
	}
	return "stable"
}
