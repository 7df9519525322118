package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders portfolio reports; an interface so handlers and report
// service tests can stub it out.
type Generator interface {
	GeneratePortfolioReport(data PortfolioData) (string, error)
}

type PortfolioRow struct {
	ID     int
	Title  string
	Stage  string
	Status string
	Budget float64
}

type PortfolioData struct {
	TotalProjects int
	ByStage       map[string]int
	ByStatus      map[string]int
	OpenRedFlags  int
	BudgetPlanned float64
	BudgetSpent   float64
	Rows          []PortfolioRow
	Filename      string // name without path; generated when empty
}

// ReportGenerator writes PDFs under RootDir.
type ReportGenerator struct {
	RootDir  string
	FontPath string // optional TTF for non-latin titles
	fontName string
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	dir := filepath.Join(g.RootDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	return filepath.Join(dir, filepath.Base(filename)), nil
}

func (g *ReportGenerator) newDoc() (*gofpdf.Fpdf, string) {
	doc := gofpdf.New("P", "mm", "A4", "")
	font := "Helvetica"
	if g.FontPath != "" {
		doc.AddUTF8Font(g.fontName, "", g.FontPath)
		font = g.fontName
	}
	return doc, font
}

func (g *ReportGenerator) GeneratePortfolioReport(data PortfolioData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("portfolio_%s.pdf", time.Now().Format("20060102_150405"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	doc, font := g.newDoc()
	doc.AddPage()

	doc.SetFont(font, "", 16)
	doc.Cell(0, 10, "Research Portfolio Report")
	doc.Ln(12)

	doc.SetFont(font, "", 10)
	doc.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	doc.Ln(10)

	doc.Cell(0, 6, fmt.Sprintf("Projects: %d    Open red flags: %d", data.TotalProjects, data.OpenRedFlags))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Budget planned: %.2f    spent: %.2f", data.BudgetPlanned, data.BudgetSpent))
	doc.Ln(10)

	writeCounts(doc, font, "By stage", data.ByStage)
	writeCounts(doc, font, "By status", data.ByStatus)

	doc.SetFont(font, "", 12)
	doc.Cell(0, 8, "Projects")
	doc.Ln(9)

	doc.SetFont(font, "", 9)
	widths := []float64{12, 78, 25, 30, 30}
	headers := []string{"ID", "Title", "Stage", "Status", "Budget"}
	for i, h := range headers {
		doc.CellFormat(widths[i], 6, h, "1", 0, "L", false, 0, "")
	}
	doc.Ln(-1)
	for _, row := range data.Rows {
		doc.CellFormat(widths[0], 6, fmt.Sprintf("%d", row.ID), "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[1], 6, row.Title, "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[2], 6, row.Stage, "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[3], 6, row.Status, "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", row.Budget), "1", 0, "R", false, 0, "")
		doc.Ln(-1)
	}

	if err := doc.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return absPath, nil
}

func writeCounts(doc *gofpdf.Fpdf, font, title string, counts map[string]int) {
	doc.SetFont(font, "", 12)
	doc.Cell(0, 8, title)
	doc.Ln(8)
	doc.SetFont(font, "", 10)

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.Cell(0, 6, fmt.Sprintf("  %s: %d", k, counts[k]))
		doc.Ln(6)
	}
	doc.Ln(4)
}
