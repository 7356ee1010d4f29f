package export

import (
	"bytes"
	"fmt"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/cashbill"
	"github.com/phpdave11/gofpdf"
)

const (
	pdfLabelWidth  = 110.0
	pdfAmountWidth = 72.0
	pdfRowHeight   = 7.0
	pdfBillGap     = 8.0
	// room for one full bill before a page break
	pdfPageLimit = 297.0 - 14.0 - float64(cashbill.BlockRows)*pdfRowHeight
)

// PDFExporter prints each bill as a bordered two-column table, stacked down A4 pages
type PDFExporter struct{}

// NewPDFExporter creates a new PDFExporter
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Format() Format {
	return FormatPDF
}

func (e *PDFExporter) Export(in Input) (*Artifact, error) {
	if in.Document == nil {
		return nil, fmt.Errorf("pdf export: missing document")
	}
	doc := in.Document

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetDrawColor(0, 0, 0)
	if in.Title != "" {
		pdf.SetTitle(in.Title, true)
	}
	if !in.Date.IsZero() {
		pdf.SetCreationDate(in.Date)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	for i, block := range doc.Blocks {
		if i > 0 {
			pdf.Ln(pdfBillGap)
		}
		if pdf.GetY() > pdfPageLimit {
			pdf.AddPage()
		}
		for row := block.TopRow; row <= block.BottomRow; row++ {
			writePDFRow(pdf, tr, doc, row, block)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf export: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf export: %w", err)
	}
	return newArtifact(FormatPDF, buf.Bytes()), nil
}

func writePDFRow(pdf *gofpdf.Fpdf, tr func(string) string, doc *cashbill.Document, row int, block cashbill.Block) {
	label := doc.Cell(row, block.LeftCol)
	value := doc.Cell(row, block.RightCol)

	if merged(doc, row, block) {
		applyPDFStyle(pdf, label)
		pdf.CellFormat(pdfLabelWidth+pdfAmountWidth, pdfRowHeight, tr(cellText(label)), "1", 1, pdfAlign(label), false, 0, "")
		return
	}

	applyPDFStyle(pdf, label)
	pdf.CellFormat(pdfLabelWidth, pdfRowHeight, tr(cellText(label)), "1", 0, pdfAlign(label), false, 0, "")
	applyPDFStyle(pdf, value)
	pdf.CellFormat(pdfAmountWidth, pdfRowHeight, tr(cellText(value)), "1", 1, pdfAlign(value), false, 0, "")
}

func merged(doc *cashbill.Document, row int, block cashbill.Block) bool {
	for _, m := range doc.Merges {
		if m.TopRow == row && m.LeftCol == block.LeftCol && m.RightCol == block.RightCol {
			return true
		}
	}
	return false
}

func applyPDFStyle(pdf *gofpdf.Fpdf, c *cashbill.Cell) {
	style := ""
	size := 10.0
	r, g, b := 20, 20, 20
	if c != nil {
		if c.Style.Bold {
			style = "B"
		}
		if c.Style.Size > 0 {
			size = c.Style.Size
		}
		if c.Style.Color != "" {
			r, g, b = hexRGB(c.Style.Color)
		}
	}
	pdf.SetFont("Helvetica", style, size)
	pdf.SetTextColor(r, g, b)
}

func pdfAlign(c *cashbill.Cell) string {
	if c == nil {
		return "L"
	}
	switch c.Style.HAlign {
	case cashbill.AlignCenter:
		return "C"
	case cashbill.AlignRight:
		return "R"
	default:
		if c.IsNumeric() {
			return "R"
		}
		return "L"
	}
}

// hexRGB reads an RRGGBB or AARRGGBB colour; malformed input prints black
func hexRGB(color string) (int, int, int) {
	hex := rgb(color)
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
