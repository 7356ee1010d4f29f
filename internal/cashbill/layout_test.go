package cashbill

import (
	"fmt"
	"testing"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var billDate = time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)

func snapshot(name string) *domain.MemberCashBillSnapshot {
	return &domain.MemberCashBillSnapshot{
		FullName:                name,
		SubscriptionIncome:      "500",
		LoanBalance:             "10000",
		MonthlyInterest:         "150",
		UpdatedPrincipalBalance: "9000",
		MonthlyInstallment:      "1000",
		InstallmentInterest:     "135",
		InterestMonths:          "9",
		TotalLoanBalance:        "9000",
		Fine:                    "",
		TotalAmountToPay:        "1785",
	}
}

func snapshots(n int) []*domain.MemberCashBillSnapshot {
	out := make([]*domain.MemberCashBillSnapshot, n)
	for i := range out {
		out[i] = snapshot(fmt.Sprintf("Member %c", 'A'+i))
	}
	return out
}

func TestLayout_BandsAndCursor(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 7} {
		t.Run(fmt.Sprintf("%d snapshots", n), func(t *testing.T) {
			doc := Layout(snapshots(n), Options{Date: billDate})

			assert.Len(t, doc.Bands, (n+1)/2)
			assert.Len(t, doc.Blocks, n)
			assert.Equal(t, DefaultRow+len(doc.Bands)*(BlockRows+DefaultGap), doc.FinalRow)

			for i, band := range doc.Bands {
				assert.Equal(t, DefaultRow+i*(BlockRows+DefaultGap), band.TopRow)
				assert.Equal(t, BlockRows+DefaultGap, band.Extent)
			}
		})
	}
}

func TestLayout_PairsInInputOrder(t *testing.T) {
	doc := Layout(snapshots(3), Options{Date: billDate})

	require.Len(t, doc.Bands, 2)
	require.Len(t, doc.Bands[0].Blocks, 2)
	require.Len(t, doc.Bands[1].Blocks, 1)

	left, right := doc.Bands[0].Blocks[0], doc.Bands[0].Blocks[1]
	assert.Equal(t, 0, left.SnapshotIndex)
	assert.Equal(t, SideLeft, left.Side)
	assert.Equal(t, 2, left.LeftCol)
	assert.Equal(t, 3, left.RightCol)
	assert.Equal(t, 1, right.SnapshotIndex)
	assert.Equal(t, SideRight, right.Side)
	assert.Equal(t, 6, right.LeftCol)
	assert.Equal(t, 7, right.RightCol)

	tail := doc.Bands[1].Blocks[0]
	assert.Equal(t, 2, tail.SnapshotIndex)
	assert.Equal(t, SideLeft, tail.Side)
	assert.Equal(t, 18, tail.TopRow)
	assert.Equal(t, 31, tail.BottomRow)
	assert.Nil(t, doc.Cell(18, 6))
}

func TestLayout_BlockContent(t *testing.T) {
	s := snapshot("John Doe V-123")
	doc := Layout([]*domain.MemberCashBillSnapshot{s}, Options{Date: billDate})

	require.Len(t, doc.Blocks, 1)
	block := doc.Blocks[0]
	assert.Equal(t, 14, block.Height())
	assert.Equal(t, "John Doe", block.Name)
	assert.Equal(t, "V-123", block.Voucher)

	title := doc.Cell(2, 2)
	require.NotNil(t, title)
	assert.Equal(t, DefaultTitle, title.Text)
	assert.Equal(t, Style{Bold: true, Size: 13, Color: TitleColor, HAlign: AlignCenter}, title.Style)

	assert.Equal(t, "Date: 05/03/2026", doc.Cell(3, 2).Text)
	assert.Equal(t, "Name: John Doe", doc.Cell(4, 2).Text)

	voucher := doc.Cell(4, 3)
	assert.Equal(t, "V-123", voucher.Text)
	assert.True(t, voucher.Style.Bold)
	assert.Equal(t, 18.0, voucher.Style.Size)

	assert.Equal(t, "Description", doc.Cell(5, 2).Text)
	assert.Equal(t, "Amount to be Paid", doc.Cell(5, 3).Text)

	items := s.LineItems()
	for i, item := range items {
		label := doc.Cell(6+i, 2)
		value := doc.Cell(6+i, 3)
		assert.Equal(t, item.Label, label.Text)
		require.True(t, value.IsNumeric())
		assert.True(t, item.Amount.Equal(*value.Amount), "row %s", item.Label)
		assert.Equal(t, AlignRight, value.Style.HAlign)
	}
	assert.True(t, doc.Cell(14, 3).Amount.IsZero(), "empty fine prints as zero")

	total := doc.Cell(15, 3)
	assert.Equal(t, "Total", doc.Cell(15, 2).Text)
	assert.Equal(t, "1785", total.Amount.String())
	assert.True(t, total.Style.Bold)

	assert.Contains(t, doc.Merges, Merge{2, 2, 2, 3})
	assert.Contains(t, doc.Merges, Merge{3, 2, 3, 3})
}

func TestLayout_TotalIsPassedThrough(t *testing.T) {
	s := snapshot("Mismatch")
	s.TotalAmountToPay = "1"
	doc := Layout([]*domain.MemberCashBillSnapshot{s}, Options{Date: billDate})

	assert.Equal(t, "1", doc.Cell(15, 3).Amount.String())
}

func TestLayout_BadNumbersDegradeToZero(t *testing.T) {
	s := snapshot("Broken")
	s.LoanBalance = "abc"
	s.TotalAmountToPay = ""
	doc := Layout([]*domain.MemberCashBillSnapshot{s}, Options{Date: billDate})

	assert.True(t, doc.Cell(7, 3).Amount.IsZero())
	assert.True(t, doc.Cell(15, 3).Amount.IsZero())
}

func TestLayout_VoucherFallsBackToMemberID(t *testing.T) {
	s := snapshot("Plain Name")
	s.MemberID = "  MEM "
	doc := Layout([]*domain.MemberCashBillSnapshot{s}, Options{Date: billDate})

	assert.Equal(t, "Name: Plain Name", doc.Cell(4, 2).Text)
	assert.Equal(t, "MEM", doc.Cell(4, 3).Text)
}

func TestLayout_ZeroDateLeftBlank(t *testing.T) {
	doc := Layout([]*domain.MemberCashBillSnapshot{snapshot("A")}, Options{})

	assert.Equal(t, "Date:", doc.Cell(3, 2).Text)
}

func TestLayout_HyphenatedMemberIDPrintedWhole(t *testing.T) {
	s := snapshot("John Doe")
	s.MemberID = "MEM-001"
	doc := Layout([]*domain.MemberCashBillSnapshot{s}, Options{Date: billDate})

	assert.Equal(t, "Name: John Doe", doc.Cell(4, 2).Text)
	assert.Equal(t, "MEM-001", doc.Cell(4, 3).Text)
}

func TestLayout_NoVoucherLeavesCellEmpty(t *testing.T) {
	doc := Layout([]*domain.MemberCashBillSnapshot{snapshot("Plain Name")}, Options{Date: billDate})

	assert.Empty(t, doc.Cell(4, 3).Text)
	assert.Equal(t, Style{}, doc.Cell(4, 3).Style)
}

func TestLayout_Borders(t *testing.T) {
	doc := Layout([]*domain.MemberCashBillSnapshot{snapshot("A")}, Options{Date: billDate})

	assert.Equal(t, Borders{BorderMedium, BorderMedium, BorderThin, BorderThin}, doc.Cell(2, 2).Borders)
	assert.Equal(t, Borders{BorderMedium, BorderThin, BorderThin, BorderMedium}, doc.Cell(2, 3).Borders)
	assert.Equal(t, Borders{BorderThin, BorderMedium, BorderThin, BorderThin}, doc.Cell(8, 2).Borders)
	assert.Equal(t, Borders{BorderThin, BorderThin, BorderMedium, BorderMedium}, doc.Cell(15, 3).Borders)
}

func TestLayout_Hints(t *testing.T) {
	doc := Layout(snapshots(2), Options{Date: billDate})

	assert.Equal(t, 4.0, doc.ColumnWidths[1])
	assert.Equal(t, 35.22, doc.ColumnWidths[2])
	assert.Equal(t, 26.21, doc.ColumnWidths[7])
	assert.Len(t, doc.RowHeights, BlockRows)
	for r := 2; r <= 15; r++ {
		assert.Equal(t, RowHeight, doc.RowHeights[r])
	}
}

func TestLayout_CustomOptions(t *testing.T) {
	doc := Layout(snapshots(2), Options{
		Title:       "MEETING 85",
		Date:        billDate,
		StartRow:    5,
		StartCol:    1,
		GapCols:     1,
		VerticalGap: 3,
	})

	assert.Equal(t, "MEETING 85", doc.Cell(5, 1).Text)
	assert.Equal(t, "MEETING 85", doc.Cell(5, 4).Text)
	assert.Equal(t, 5+BlockRows+3, doc.FinalRow)
}
