// Package export renders a laid-out cash bill document into downloadable files.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/cashbill"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
)

// Format identifies an output file type
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// DefaultFormat is used when a request names none
const DefaultFormat = FormatXLSX

// ParseFormat validates a requested format. Empty selects the default.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return DefaultFormat, nil
	case FormatXLSX, FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
	}
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Input is everything an exporter needs. Every format renders the same
// Document, so they all tell the same story. Date stamps the file metadata.
type Input struct {
	Document *cashbill.Document
	Title    string
	Date     time.Time
}

// Artifact is a rendered file
type Artifact struct {
	Format      Format
	ContentType string
	Data        []byte
}

// Size returns the artifact length in bytes
func (a *Artifact) Size() int {
	return len(a.Data)
}

// Exporter renders one format
type Exporter interface {
	Format() Format
	Export(in Input) (*Artifact, error)
}

// Registry looks exporters up by format
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry creates a registry holding the given exporters
func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[Format]Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

// DefaultRegistry holds the spreadsheet, delimited and printable exporters
func DefaultRegistry() *Registry {
	return NewRegistry(NewXLSXExporter(), NewCSVExporter(), NewPDFExporter())
}

// Get returns the exporter for a format
func (r *Registry) Get(format Format) (Exporter, error) {
	e, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return e, nil
}

func newArtifact(format Format, data []byte) *Artifact {
	return &Artifact{Format: format, ContentType: format.ContentType(), Data: data}
}

// cellText renders a layout cell the way the flat exporters print it
func cellText(c *cashbill.Cell) string {
	if c == nil {
		return ""
	}
	if c.IsNumeric() {
		return c.Amount.String()
	}
	return c.Text
}
