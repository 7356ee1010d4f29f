package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes a flat transcript: one section per bill, two columns per
// row, a blank line between sections.
type CSVExporter struct{}

// NewCSVExporter creates a new CSVExporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Format() Format {
	return FormatCSV
}

func (e *CSVExporter) Export(in Input) (*Artifact, error) {
	if in.Document == nil {
		return nil, fmt.Errorf("csv export: missing document")
	}
	doc := in.Document

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for i, block := range doc.Blocks {
		if i > 0 {
			if err := w.Write([]string{}); err != nil {
				return nil, fmt.Errorf("csv export: %w", err)
			}
		}
		for row := block.TopRow; row <= block.BottomRow; row++ {
			record := []string{
				cellText(doc.Cell(row, block.LeftCol)),
				cellText(doc.Cell(row, block.RightCol)),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("csv export: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	return newArtifact(FormatCSV, buf.Bytes()), nil
}
