package export

import (
	"fmt"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/cashbill"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the bills
const SheetName = "Cash Bills"

// XLSXExporter writes the layout cell for cell into a styled workbook
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) Format() Format {
	return FormatXLSX
}

func (e *XLSXExporter) Export(in Input) (*Artifact, error) {
	if in.Document == nil {
		return nil, fmt.Errorf("xlsx export: missing document")
	}
	doc := in.Document

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx export: %w", err)
	}
	props := &excelize.DocProperties{Title: in.Title, Creator: "pooldesk"}
	if !in.Date.IsZero() {
		props.Created = in.Date.UTC().Format(time.RFC3339)
	}
	if err := f.SetDocProps(props); err != nil {
		return nil, fmt.Errorf("xlsx export: %w", err)
	}

	for col, width := range doc.ColumnWidths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, width); err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
	}
	for row, height := range doc.RowHeights {
		if err := f.SetRowHeight(SheetName, row, height); err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
	}

	styles := newStyleCache(f)
	for _, c := range doc.Cells {
		ref, err := excelize.CoordinatesToCellName(c.Col, c.Row)
		if err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
		switch {
		case c.IsNumeric():
			err = f.SetCellFloat(SheetName, ref, c.Amount.InexactFloat64(), -1, 64)
		case c.Text != "":
			err = f.SetCellStr(SheetName, ref, c.Text)
		}
		if err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}

		styleID, err := styles.get(c.Style, c.Borders)
		if err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
		if err := f.SetCellStyle(SheetName, ref, ref, styleID); err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
	}

	for _, m := range doc.Merges {
		topLeft, err := excelize.CoordinatesToCellName(m.LeftCol, m.TopRow)
		if err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
		bottomRight, err := excelize.CoordinatesToCellName(m.RightCol, m.BottomRow)
		if err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
		if err := f.MergeCell(SheetName, topLeft, bottomRight); err != nil {
			return nil, fmt.Errorf("xlsx export: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx export: %w", err)
	}
	return newArtifact(FormatXLSX, buf.Bytes()), nil
}

type styleKey struct {
	style   cashbill.Style
	borders cashbill.Borders
}

// styleCache registers each distinct style once per workbook
type styleCache struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[styleKey]int)}
}

func (s *styleCache) get(style cashbill.Style, borders cashbill.Borders) (int, error) {
	key := styleKey{style, borders}
	if id, ok := s.ids[key]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(toExcelStyle(style, borders))
	if err != nil {
		return 0, err
	}
	s.ids[key] = id
	return id, nil
}

func toExcelStyle(style cashbill.Style, borders cashbill.Borders) *excelize.Style {
	out := &excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
	}
	if style.HAlign != "" {
		out.Alignment.Horizontal = string(style.HAlign)
	}
	if style.Bold || style.Size > 0 || style.Color != "" {
		out.Font = &excelize.Font{
			Bold:  style.Bold,
			Size:  style.Size,
			Color: rgb(style.Color),
		}
	}

	edges := []struct {
		side   string
		weight cashbill.BorderWeight
	}{
		{"top", borders.Top},
		{"left", borders.Left},
		{"bottom", borders.Bottom},
		{"right", borders.Right},
	}
	for _, e := range edges {
		if e.weight == cashbill.BorderNone {
			continue
		}
		out.Border = append(out.Border, excelize.Border{
			Type:  e.side,
			Color: rgb(cashbill.BorderColor),
			Style: borderStyle(e.weight),
		})
	}
	return out
}

// excelize border styles: 1 thin, 2 medium
func borderStyle(w cashbill.BorderWeight) int {
	if w == cashbill.BorderMedium {
		return 2
	}
	return 1
}

// rgb drops the alpha channel from an ARGB hex colour; excelize adds its own
func rgb(argb string) string {
	if len(argb) == 8 {
		return argb[2:]
	}
	return argb
}
