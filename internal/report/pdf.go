// Package report formats a PAP collection into the paginated landscape
// PDF exports: the targets report and the accomplishment list.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// Kind selects which export to build.
type Kind string

const (
	// KindTargets is the quarterly-targets report.
	KindTargets Kind = "targets"
	// KindList is the numbered accomplishment list with actual/target cells.
	KindList Kind = "list"
)

// Quarter filters the visible quarter columns.
type Quarter string

const QuarterAll Quarter = "all"

var allQuarters = []struct {
	Target string
	Label  string
}{
	{"q1", "Q1"}, {"q2", "Q2"}, {"q3", "Q3"}, {"q4", "Q4"},
}

// Options configures one export.
type Options struct {
	Kind     Kind
	Quarter  Quarter
	Title    string
	Subtitle string
}

const (
	marginL   = 30.0
	marginR   = 30.0
	usable    = 948.0
	footerPad = 60.0
)

// Build renders the export and returns the PDF bytes.
func Build(items []domain.PAP, opts Options) ([]byte, error) {
	if opts.Quarter == "" {
		opts.Quarter = QuarterAll
	}
	if opts.Title == "" {
		opts.Title = "FY 2026 Annual Operation Plan"
	}
	if opts.Subtitle == "" {
		opts.Subtitle = "College of Engineering — Alangilan Campus"
	}

	pdf := fpdf.New("L", "pt", "Legal", "")
	pdf.SetMargins(marginL, 18, marginR)
	pdf.SetAutoPageBreak(false, footerPad)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-25)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	y := drawLetterhead(pdf, tr)
	y = drawReportTitle(pdf, tr, y, opts)

	head, widths := columns(opts)

	t := &table{pdf: pdf, tr: tr, head: head, widths: widths}
	for i, g := range GroupByContext(items) {
		y = t.groupHeader(y, g, i == 0)
		for _, p := range g.Items {
			y = t.row(y, cells(p, opts))
		}
		y += 18
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLetterhead(pdf *fpdf.Fpdf, tr func(string) string) float64 {
	pageW, _ := pdf.GetPageSize()
	centerX := pageW / 2

	y := 30.0
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.Text(centerX-pdf.GetStringWidth("BATANGAS STATE UNIVERSITY")/2, y, "BATANGAS STATE UNIVERSITY")

	y += 13
	pdf.SetTextColor(214, 40, 40)
	pdf.SetFont("Helvetica", "B", 9)
	s := "THE NATIONAL ENGINEERING UNIVERSITY"
	pdf.Text(centerX-pdf.GetStringWidth(s)/2, y, s)

	y += 11
	pdf.SetFont("Helvetica", "I", 8)
	s = "Leading Innovations, Transforming Lives, Building the Nation"
	pdf.Text(centerX-pdf.GetStringWidth(s)/2, y, tr(s))

	y += 10
	pdf.SetTextColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginL, y, pageW-marginR, y)
	return y + 14
}

func drawReportTitle(pdf *fpdf.Fpdf, tr func(string) string, y float64, opts Options) float64 {
	pageW, _ := pdf.GetPageSize()
	centerX := pageW / 2

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(centerX-pdf.GetStringWidth(opts.Title)/2, y, tr(opts.Title))
	y += 13

	pdf.SetFont("Helvetica", "", 9.5)
	pdf.SetTextColor(60, 60, 60)
	sub := tr(opts.Subtitle)
	pdf.Text(centerX-pdf.GetStringWidth(sub)/2, y, sub)
	y += 13

	label := "All Quarters"
	if opts.Quarter != QuarterAll {
		label = strings.ToUpper(string(opts.Quarter))
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	s := "Filter: " + label
	pdf.Text(centerX-pdf.GetStringWidth(s)/2, y+4, s)
	pdf.SetTextColor(0, 0, 0)
	return y + 16
}

// columns builds the header labels and widths for the chosen report kind
// and quarter filter. The first descriptive column absorbs rounding so
// the row always spans the usable width.
func columns(opts Options) ([]string, []float64) {
	filtered := opts.Quarter != QuarterAll
	qCount := 4
	if filtered {
		qCount = 1
	}

	var head []string
	var widths []float64

	if opts.Kind == KindList {
		head = []string{"#", "Programs, Activities & Projects", "Performance Indicator", "Personnel / Office"}
		fixedR := []float64{46, 42, 54, 56, 50, 38, 56, 46} // cost, fund, risks, prob, sev, exposure, mitigating, status
		qColW := 52.0
		leftOver := usable - 18 - float64(qCount)*qColW - sum(fixedR)
		widths = []float64{18, math.Round(leftOver * 0.40), math.Round(leftOver * 0.35), math.Round(leftOver * 0.25)}
		for i := 0; i < qCount; i++ {
			widths = append(widths, qColW)
		}
		widths = append(widths, fixedR...)
		head = appendQuarterHeads(head, opts.Quarter)
		head = append(head, "Total Est.\nCost", "Fund\nSource", "Risks", "Probability", "Severity", "Risk\nExposure", "Mitigating\nActivities", "Status")
		widths[1] += usable - sum(widths)
		return head, widths
	}

	head = []string{"Programs, Activities, and Projects", "Performance Indicator", "Personnel / Office Concerned"}
	if !filtered {
		fixedR := []float64{50, 40, 50, 56, 50, 40, 56, 44} // cost, fund, risks, prob, sev, exposure, mitigating, status
		qNum, totW := 36.0, 36.0
		leftOver := usable - 4*qNum - totW - sum(fixedR)
		widths = []float64{math.Round(leftOver * 0.40), math.Round(leftOver * 0.35), math.Round(leftOver * 0.25), qNum, qNum, qNum, qNum, totW}
		widths = append(widths, fixedR...)
		head = appendQuarterHeads(head, opts.Quarter)
		head = append(head, "Total\nTarget", "Total Est.\nCost", "Fund\nSource", "Risks", "Probability", "Severity", "Risk\nExposure", "Mitigating\nActivities", "Status")
	} else {
		fixedR := []float64{44, 56, 58, 52, 40, 58, 48} // fund, risks, prob, sev, exposure, mitigating, status
		qNum := 44.0
		leftOver := usable - qNum - sum(fixedR)
		widths = []float64{math.Round(leftOver * 0.38), math.Round(leftOver * 0.36), math.Round(leftOver * 0.26), qNum}
		widths = append(widths, fixedR...)
		head = appendQuarterHeads(head, opts.Quarter)
		head = append(head, "Fund\nSource", "Risks", "Probability", "Severity", "Risk\nExposure", "Mitigating\nActivities", "Status")
	}
	widths[0] += usable - sum(widths)
	return head, widths
}

func appendQuarterHeads(head []string, q Quarter) []string {
	for _, qc := range allQuarters {
		if q == QuarterAll || string(q) == qc.Target {
			head = append(head, qc.Label+"\nTarget")
		}
	}
	return head
}

// cells builds one body row for a record.
func cells(p domain.PAP, opts Options) []string {
	quarters := map[string][2]string{
		"q1": {p.Q1, p.ActualQ1}, "q2": {p.Q2, p.ActualQ2},
		"q3": {p.Q3, p.ActualQ3}, "q4": {p.Q4, p.ActualQ4},
	}

	var row []string
	if opts.Kind == KindList {
		row = append(row, "") // row number filled in by the table
	}
	row = append(row, dash(p.Title), dash(p.PerformanceIndicator), dash(p.PersonnelOfficeConcerned))

	for _, qc := range allQuarters {
		if opts.Quarter != QuarterAll && string(opts.Quarter) != qc.Target {
			continue
		}
		pair := quarters[qc.Target]
		if opts.Kind == KindList {
			row = append(row, actualOverTarget(pair[0], pair[1]))
		} else {
			row = append(row, numCell(pair[0]))
		}
	}

	filtered := opts.Quarter != QuarterAll
	if opts.Kind == KindTargets && !filtered {
		total := p.TotalTarget()
		if total == 0 {
			row = append(row, "—")
		} else {
			row = append(row, trimFloat(total))
		}
	}
	if opts.Kind == KindList || !filtered {
		row = append(row, FormatPHP(p.TotalEstimatedCost))
	}

	row = append(row,
		dash(p.FundSource), dash(p.Risks), dash(p.Probability), dash(p.Severity),
		dash(p.RiskExposure), dash(p.MitigatingActivities), status(p))
	return row
}

// table lays out the grouped grid with page breaks that repeat the
// header row.
type table struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	head   []string
	widths []float64
	rowNum int
}

const (
	cellPad   = 2.5
	lineH     = 8.5
	headLineH = 9.0
)

func (t *table) pageBottom() float64 {
	_, pageH := t.pdf.GetPageSize()
	return pageH - footerPad
}

func (t *table) groupHeader(y float64, g Group, first bool) float64 {
	const headerLineH, headerPadV = 13.0, 8.0

	lines := 3
	if g.Key == domain.UngroupedKey {
		lines = 1
	}
	blockH := float64(lines)*headerLineH + headerPadV*2

	if !first && y+blockH+30 > t.pageBottom() {
		t.pdf.AddPage()
		y = 40
	}

	t.pdf.SetDrawColor(180, 180, 180)
	t.pdf.SetLineWidth(0.4)
	t.pdf.Line(marginL, y, marginL+usable, y)
	t.pdf.SetDrawColor(0, 0, 0)
	t.pdf.SetLineWidth(0.5)
	y += headerPadV

	if g.Key == domain.UngroupedKey {
		t.pdf.SetFont("Helvetica", "", 8)
		t.pdf.SetTextColor(100, 100, 100)
		t.pdf.Text(marginL, y+8, "No strategic context assigned")
		y += headerLineH
	} else {
		t.pdf.SetFont("Helvetica", "B", 8)
		t.pdf.SetTextColor(0, 0, 0)
		t.pdf.Text(marginL, y+8, t.tr("Development Area: "+g.DevelopmentArea))
		y += headerLineH
		t.pdf.SetFont("Helvetica", "", 8)
		t.pdf.SetTextColor(30, 30, 30)
		t.pdf.Text(marginL, y+8, t.tr("Outcome: "+g.Outcome))
		y += headerLineH
		t.pdf.Text(marginL, y+8, t.tr("Strategy: "+g.Strategy))
		y += headerLineH
	}
	t.pdf.SetTextColor(0, 0, 0)
	y += headerPadV

	return t.headerRow(y)
}

func (t *table) headerRow(y float64) float64 {
	t.pdf.SetFont("Helvetica", "B", 7)
	t.pdf.SetFillColor(255, 182, 193)

	h := 0.0
	for _, cell := range t.head {
		lines := float64(len(strings.Split(cell, "\n")))
		h = math.Max(h, lines*headLineH+2*cellPad)
	}

	x := marginL
	for i, cell := range t.head {
		t.drawCell(x, y, t.widths[i], h, cell, true, "C")
		x += t.widths[i]
	}
	return y + h
}

func (t *table) row(y float64, cells []string) float64 {
	t.pdf.SetFont("Helvetica", "", 7)

	if len(cells) > 0 && cells[0] == "" && t.head[0] == "#" {
		t.rowNum++
		cells[0] = fmt.Sprintf("%d", t.rowNum)
	}

	h := 0.0
	splits := make([][]string, len(cells))
	for i, cell := range cells {
		splits[i] = t.pdf.SplitText(t.tr(cell), t.widths[i]-2*cellPad)
		h = math.Max(h, float64(len(splits[i]))*lineH+2*cellPad)
	}

	if y+h > t.pageBottom() {
		t.pdf.AddPage()
		y = t.headerRow(40)
		t.pdf.SetFont("Helvetica", "", 7)
	}

	x := marginL
	for i := range cells {
		t.drawSplitCell(x, y, t.widths[i], h, splits[i])
		x += t.widths[i]
	}
	return y + h
}

func (t *table) drawCell(x, y, w, h float64, text string, fill bool, align string) {
	style := "D"
	if fill {
		style = "FD"
	}
	t.pdf.Rect(x, y, w, h, style)
	lines := strings.Split(text, "\n")
	startY := y + (h-float64(len(lines))*headLineH)/2 + headLineH - 2
	for _, line := range lines {
		line = t.tr(line)
		lx := x + cellPad
		if align == "C" {
			lx = x + (w-t.pdf.GetStringWidth(line))/2
		}
		t.pdf.Text(lx, startY, line)
		startY += headLineH
	}
}

func (t *table) drawSplitCell(x, y, w, h float64, lines []string) {
	t.pdf.Rect(x, y, w, h, "D")
	ly := y + cellPad + lineH - 2
	for _, line := range lines {
		t.pdf.Text(x+cellPad, ly, line)
		ly += lineH
	}
}

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}
