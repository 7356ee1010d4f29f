package cashbill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVoucher(t *testing.T) {
	tests := []struct {
		name       string
		display    string
		explicit   ExplicitFields
		wantName   string
		wantCode   string
		wantSource MatchSource
	}{
		{"trailing hyphenated code", "John Doe V-123", ExplicitFields{}, "John Doe", "V-123", SourceTrailingName},
		{"explicit member id", "Jane", ExplicitFields{MemberID: "V7"}, "Jane", "V7", SourceExplicitField},
		{"lowercase is normalized", "Ravi Kumar v-45", ExplicitFields{}, "Ravi Kumar", "V-45", SourceTrailingName},
		{"bracketed code", "Asha (V12)", ExplicitFields{}, "Asha", "V12", SourceTrailingName},
		{"hash prefixed code", "Meena #V9", ExplicitFields{}, "Meena", "V9", SourceTrailingName},
		{"bare number", "Suresh 42", ExplicitFields{}, "Suresh", "42", SourceTrailingName},
		{"comma separated", "Anil, V-8", ExplicitFields{}, "Anil", "V-8", SourceTrailingName},
		{"inner whitespace removed", "Lata V 77", ExplicitFields{}, "Lata", "V77", SourceTrailingName},
		{"explicit code stripped from name", "Jane Roe (V-12)", ExplicitFields{Voucher: "v-12"}, "Jane Roe", "V-12", SourceExplicitField},
		{"voucher_no wins over member_id", "Priya", ExplicitFields{VoucherNo: "V1", MemberID: "V2"}, "Priya", "V1", SourceExplicitField},
		{"blank explicit falls through", "Priya V3", ExplicitFields{VoucherNo: "  ", Voucher: "n/a"}, "Priya", "V3", SourceTrailingName},
		{"name that is only a code keeps raw name", "V5", ExplicitFields{MemberID: "V5"}, "V5", "V5", SourceExplicitField},
		{"code inside a longer token stays in the name", "John Doe V-123", ExplicitFields{MemberID: "123"}, "John Doe V-123", "123", SourceExplicitField},
		{"code after a dash separator is stripped", "John Doe - 123", ExplicitFields{MemberID: "123"}, "John Doe", "123", SourceExplicitField},
		{"code embedded in a member id with spaces", "Kavya", ExplicitFields{MemberID: "Branch V-31"}, "Kavya", "V-31", SourceExplicitField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractVoucher(tt.display, tt.explicit)

			m, ok := result.(Matched)
			if assert.True(t, ok, "expected a match, got %#v", result) {
				assert.Equal(t, tt.wantName, m.CleanName())
				assert.Equal(t, tt.wantCode, m.VoucherCode())
				assert.Equal(t, tt.wantSource, m.Source)
			}
		})
	}
}

func TestExtractVoucher_Unmatched(t *testing.T) {
	tests := []struct {
		name    string
		display string
		want    string
	}{
		{"plain name", "Plain Name", "Plain Name"},
		{"surrounding whitespace trimmed", "  Plain Name  ", "Plain Name"},
		{"digits glued to a word", "Room12", "Room12"},
		{"too many digits", "Account 1234567", "Account 1234567"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractVoucher(tt.display, ExplicitFields{})

			assert.IsType(t, Unmatched{}, result)
			assert.Equal(t, tt.want, result.CleanName())
			assert.Empty(t, result.VoucherCode())
		})
	}
}

func TestExtractVoucher_HyphenatedMemberIDIsNotACode(t *testing.T) {
	for _, memberID := range []string{"MEM-001", "A12", "ID7"} {
		t.Run(memberID, func(t *testing.T) {
			result := ExtractVoucher("John Doe", ExplicitFields{MemberID: memberID})

			assert.IsType(t, Unmatched{}, result)
			assert.Equal(t, "John Doe", result.CleanName())
		})
	}
}
