// Package cashbill lays member snapshots out as printable cash bills: two bills
// per band on a fixed grid, ready for a document exporter.
package cashbill

import (
	"strings"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Grid geometry. Columns and rows are 1-based, as in a spreadsheet.
const (
	BlockRows   = 14
	BlockCols   = 2
	RowHeight   = 20.0
	DefaultGap  = 2
	DefaultRow  = 2
	DefaultCol  = 2 // B
	TitleColor  = "FF0B2E6F"
	BorderColor = "FF000000"
)

// DefaultTitle heads every bill unless configured otherwise
const DefaultTitle = "CASH BILL MEETING"

// Column width hints for A..G: margin, left bill, gap, right bill
var defaultColumnWidths = []float64{4, 35.22, 26.1, 5.84, 5.84, 26.1, 26.21}

// Options controls placement. Zero values fall back to the defaults, except
// Date: a zero Date prints no date.
type Options struct {
	Title       string
	Date        time.Time
	StartRow    int
	StartCol    int
	GapCols     int
	VerticalGap int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.StartRow <= 0 {
		o.StartRow = DefaultRow
	}
	if o.StartCol <= 0 {
		o.StartCol = DefaultCol
	}
	if o.GapCols <= 0 {
		o.GapCols = DefaultGap
	}
	if o.VerticalGap <= 0 {
		o.VerticalGap = DefaultGap
	}
	return o
}

// RightCol is the first column of the right-hand bill
func (o Options) RightCol() int {
	return o.StartCol + BlockCols + o.GapCols
}

// BorderWeight is the line style of one cell edge
type BorderWeight int

const (
	BorderNone BorderWeight = iota
	BorderThin
	BorderMedium
)

// Borders holds the four edges of a cell
type Borders struct {
	Top, Left, Bottom, Right BorderWeight
}

type HAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"
)

// Style is a rendering hint; exporters map it to their own model
type Style struct {
	Bold   bool
	Size   float64
	Color  string
	HAlign HAlign
}

// Cell is one positioned value. Amount is set for numeric cells, Text otherwise.
type Cell struct {
	Row     int
	Col     int
	Text    string
	Amount  *decimal.Decimal
	Style   Style
	Borders Borders
}

// IsNumeric reports whether the cell holds an amount
func (c *Cell) IsNumeric() bool {
	return c.Amount != nil
}

// Merge is a rectangular range rendered as a single cell
type Merge struct {
	TopRow, LeftCol, BottomRow, RightCol int
}

type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Block is the rectangle occupied by one member's bill
type Block struct {
	SnapshotIndex int
	Side          Side
	Name          string
	Voucher       string
	TopRow        int
	LeftCol       int
	BottomRow     int
	RightCol      int
}

// Height is the number of rows the block spans
func (b Block) Height() int {
	return b.BottomRow - b.TopRow + 1
}

// Band is one horizontal strip holding a left bill and, when present, a right one
type Band struct {
	TopRow int
	// Extent is the rows consumed including the vertical gap
	Extent int
	Blocks []Block
}

type position struct{ row, col int }

// Document is the fully positioned cash bill sheet
type Document struct {
	Cells        []*Cell
	Merges       []Merge
	ColumnWidths map[int]float64
	RowHeights   map[int]float64
	Blocks       []Block
	Bands        []Band
	// FinalRow is the layout cursor after the last band
	FinalRow int

	index map[position]*Cell
}

// Cell returns the cell at row, col or nil
func (d *Document) Cell(row, col int) *Cell {
	return d.index[position{row, col}]
}

func (d *Document) cell(row, col int) *Cell {
	p := position{row, col}
	if c, ok := d.index[p]; ok {
		return c
	}
	c := &Cell{Row: row, Col: col}
	d.index[p] = c
	d.Cells = append(d.Cells, c)
	return c
}

// Layout places snapshots two per band in input order. It never fails: missing
// or non-numeric figures print as 0.
func Layout(snapshots []*domain.MemberCashBillSnapshot, opts Options) *Document {
	opts = opts.withDefaults()

	doc := &Document{
		ColumnWidths: make(map[int]float64, len(defaultColumnWidths)),
		RowHeights:   make(map[int]float64),
		index:        make(map[position]*Cell),
	}
	for i, w := range defaultColumnWidths {
		doc.ColumnWidths[i+1] = w
	}

	cursor := opts.StartRow
	for i := 0; i < len(snapshots); i += 2 {
		left := placeBill(doc, snapshots[i], i, SideLeft, cursor, opts.StartCol, opts)
		band := Band{TopRow: cursor, Blocks: []Block{left}}
		used := left.Height()

		if i+1 < len(snapshots) {
			right := placeBill(doc, snapshots[i+1], i+1, SideRight, cursor, opts.RightCol(), opts)
			band.Blocks = append(band.Blocks, right)
			used = max(used, right.Height())
		}

		band.Extent = used + opts.VerticalGap
		doc.Bands = append(doc.Bands, band)
		cursor += band.Extent
	}
	doc.FinalRow = cursor

	return doc
}

func placeBill(doc *Document, s *domain.MemberCashBillSnapshot, index int, side Side, top, left int, opts Options) Block {
	if s == nil {
		s = &domain.MemberCashBillSnapshot{}
	}
	result := ExtractVoucher(s.FullName, ExplicitFields{
		VoucherNo: s.VoucherNo,
		Voucher:   s.Voucher,
		MemberID:  s.MemberID,
	})
	voucher := result.VoucherCode()
	if voucher == "" {
		voucher = strings.TrimSpace(s.MemberID)
	}

	right := left + 1
	bottom := top + BlockRows - 1
	for r := top; r <= bottom; r++ {
		doc.RowHeights[r] = RowHeight
	}

	title := doc.cell(top, left)
	title.Text = opts.Title
	title.Style = Style{Bold: true, Size: 13, Color: TitleColor, HAlign: AlignCenter}
	doc.Merges = append(doc.Merges, Merge{top, left, top, right})

	date := doc.cell(top+1, left)
	date.Text = "Date:"
	if !opts.Date.IsZero() {
		date.Text += " " + util.FormatDayMonthYear(opts.Date)
	}
	date.Style = Style{Size: 11, Color: TitleColor, HAlign: AlignCenter}
	doc.Merges = append(doc.Merges, Merge{top + 1, left, top + 1, right})

	name := doc.cell(top+2, left)
	name.Text = strings.TrimSpace("Name: " + result.CleanName())
	name.Style = Style{Size: 11, Color: TitleColor, HAlign: AlignLeft}

	code := doc.cell(top+2, right)
	if voucher != "" {
		code.Text = voucher
		code.Style = Style{Bold: true, Size: 18, Color: TitleColor, HAlign: AlignCenter}
	}

	header := top + 3
	doc.cell(header, left).Text = "Description"
	doc.cell(header, left).Style = Style{Bold: true, Color: TitleColor, HAlign: AlignLeft}
	doc.cell(header, right).Text = "Amount to be Paid"
	doc.cell(header, right).Style = Style{Bold: true, Color: TitleColor, HAlign: AlignRight}

	row := header + 1
	for _, item := range s.LineItems() {
		amount := item.Amount
		doc.cell(row, left).Text = item.Label
		value := doc.cell(row, right)
		value.Amount = &amount
		value.Style = Style{HAlign: AlignRight}
		row++
	}

	total := s.Total()
	doc.cell(row, left).Text = "Total"
	doc.cell(row, left).Style = Style{Bold: true}
	totalCell := doc.cell(row, right)
	totalCell.Amount = &total
	totalCell.Style = Style{Bold: true, HAlign: AlignRight}

	applyThinBorders(doc, top, left, row, right)
	applyOuterBorders(doc, top, left, row, right)

	block := Block{
		SnapshotIndex: index,
		Side:          side,
		Name:          result.CleanName(),
		Voucher:       voucher,
		TopRow:        top,
		LeftCol:       left,
		BottomRow:     row,
		RightCol:      right,
	}
	doc.Blocks = append(doc.Blocks, block)
	return block
}

func applyThinBorders(doc *Document, top, left, bottom, right int) {
	for r := top; r <= bottom; r++ {
		for c := left; c <= right; c++ {
			doc.cell(r, c).Borders = Borders{BorderThin, BorderThin, BorderThin, BorderThin}
		}
	}
}

func applyOuterBorders(doc *Document, top, left, bottom, right int) {
	for c := left; c <= right; c++ {
		doc.cell(top, c).Borders.Top = BorderMedium
		doc.cell(bottom, c).Borders.Bottom = BorderMedium
	}
	for r := top; r <= bottom; r++ {
		doc.cell(r, left).Borders.Left = BorderMedium
		doc.cell(r, right).Borders.Right = BorderMedium
	}
}
