package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/cashbill"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportDate = time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)

func testSnapshots() []*domain.MemberCashBillSnapshot {
	return []*domain.MemberCashBillSnapshot{
		{
			UserID:             uuid.New(),
			FullName:           "John Doe V-123",
			SubscriptionIncome: "500",
			LoanBalance:        "10000",
			MonthlyInterest:    "150",
			TotalAmountToPay:   "1785",
		},
		{
			UserID:             uuid.New(),
			FullName:           "Jane",
			MemberID:           "V7",
			SubscriptionIncome: "500",
			Fine:               "not a number",
			TotalAmountToPay:   "500",
		},
		{
			UserID:           uuid.New(),
			FullName:         "Plain Name",
			TotalAmountToPay: "0",
		},
	}
}

func testInput() Input {
	snapshots := testSnapshots()
	return Input{
		Document: cashbill.Layout(snapshots, cashbill.Options{Date: exportDate}),
		Title:    cashbill.DefaultTitle,
		Date:     exportDate,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{" CSV ", FormatCSV, false},
		{"pdf", FormatPDF, false},
		{"docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, f := range []Format{FormatXLSX, FormatCSV, FormatPDF} {
		e, err := r.Get(f)
		require.NoError(t, err)
		assert.Equal(t, f, e.Format())
	}

	_, err := NewRegistry(NewCSVExporter()).Get(FormatPDF)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}

func TestExporters_RequireDocument(t *testing.T) {
	for _, e := range []Exporter{NewXLSXExporter(), NewCSVExporter(), NewPDFExporter()} {
		_, err := e.Export(Input{})
		assert.Error(t, err, string(e.Format()))
	}
}

func TestXLSXExporter(t *testing.T) {
	artifact, err := NewXLSXExporter().Export(testInput())
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, artifact.Format)
	assert.Equal(t, FormatXLSX.ContentType(), artifact.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	get := func(ref string) string {
		v, err := f.GetCellValue(SheetName, ref)
		require.NoError(t, err)
		return v
	}

	// left bill
	assert.Equal(t, cashbill.DefaultTitle, get("B2"))
	assert.Equal(t, "Date: 05/03/2026", get("B3"))
	assert.Equal(t, "Name: John Doe", get("B4"))
	assert.Equal(t, "V-123", get("C4"))
	assert.Equal(t, "Subscription Income", get("B6"))
	assert.Equal(t, "500", get("C6"))
	assert.Equal(t, "Total", get("B15"))
	assert.Equal(t, "1785", get("C15"))

	// right bill
	assert.Equal(t, "Name: Jane", get("F4"))
	assert.Equal(t, "V7", get("G4"))
	assert.Equal(t, "0", get("G14"))

	// odd tail on the next band
	assert.Equal(t, "Name: Plain Name", get("B20"))

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, cashbill.DefaultTitle, props.Title)
	assert.Equal(t, "2026-03-05T09:30:00Z", props.Created)

	merges, err := f.GetMergeCells(SheetName)
	require.NoError(t, err)
	assert.Len(t, merges, 6)

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.InDelta(t, 35.22, width, 0.01)

	height, err := f.GetRowHeight(SheetName, 2)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, height, 0.01)
}

func TestCSVExporter(t *testing.T) {
	artifact, err := NewCSVExporter().Export(testInput())
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", artifact.ContentType)

	r := csv.NewReader(bytes.NewReader(artifact.Data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// blank separator lines are skipped by the reader
	require.Len(t, records, 3*cashbill.BlockRows)

	first := records[:cashbill.BlockRows]
	assert.Equal(t, []string{cashbill.DefaultTitle, ""}, first[0])
	assert.Equal(t, []string{"Name: John Doe", "V-123"}, first[2])
	assert.Equal(t, []string{"Description", "Amount to be Paid"}, first[3])
	assert.Equal(t, []string{"Principal Balance", "10000"}, first[5])
	assert.Equal(t, []string{"Total", "1785"}, first[13])

	second := records[cashbill.BlockRows : 2*cashbill.BlockRows]
	assert.Equal(t, []string{"Name: Jane", "V7"}, second[2])
	assert.Equal(t, []string{"Fine", "0"}, second[12])
}

func TestPDFExporter(t *testing.T) {
	artifact, err := NewPDFExporter().Export(testInput())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
	assert.Greater(t, artifact.Size(), 0)
}

func TestPDFExporter_ManyBillsPaginate(t *testing.T) {
	var snapshots []*domain.MemberCashBillSnapshot
	for i := 0; i < 12; i++ {
		snapshots = append(snapshots, &domain.MemberCashBillSnapshot{FullName: "Member", TotalAmountToPay: "10"})
	}
	in := Input{Document: cashbill.Layout(snapshots, cashbill.Options{Date: exportDate})}

	artifact, err := NewPDFExporter().Export(in)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
}

func TestHexRGB(t *testing.T) {
	r, g, b := hexRGB(cashbill.TitleColor)
	assert.Equal(t, []int{11, 46, 111}, []int{r, g, b})

	r, g, b = hexRGB("zz")
	assert.Equal(t, []int{0, 0, 0}, []int{r, g, b})
}
