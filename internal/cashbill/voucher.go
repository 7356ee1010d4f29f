package cashbill

import (
	"regexp"
	"strings"
)

// ExplicitFields are the profile fields that may carry a voucher code, checked in
// this order.
type ExplicitFields struct {
	VoucherNo string
	Voucher   string
	MemberID  string
}

func (f ExplicitFields) ordered() []string {
	return []string{f.VoucherNo, f.Voucher, f.MemberID}
}

// MatchSource records where a voucher code was found
type MatchSource int

const (
	SourceExplicitField MatchSource = iota + 1
	SourceTrailingName
)

// VoucherResult is either Matched or Unmatched
type VoucherResult interface {
	CleanName() string
	VoucherCode() string
	isVoucherResult()
}

// Matched is a display name split into the member's name and voucher code
type Matched struct {
	Name   string
	Code   string
	Source MatchSource
}

func (m Matched) CleanName() string   { return m.Name }
func (m Matched) VoucherCode() string { return m.Code }
func (Matched) isVoucherResult()      {}

// Unmatched carries the display name untouched
type Unmatched struct {
	OriginalName string
}

func (u Unmatched) CleanName() string { return u.OriginalName }
func (Unmatched) VoucherCode() string { return "" }
func (Unmatched) isVoucherResult()    {}

var (
	// V-123, v123, 123 standing on their own; MEM-001 and A12 carry no code
	voucherToken = regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9-])((?:V-?)?\d{1,6})\b`)
	// "Name V-123", "Name, (V 12)", "Name #V7", "Name 42"
	trailingVoucher = regexp.MustCompile(`(?i)^(.*?)[\s,\-]*[(\[#]?\b((?:V-?\s*)?\d{1,6})[)\]]?\s*$`)
	whitespace      = regexp.MustCompile(`\s+`)
)

type voucherMatcher func(name string, explicit ExplicitFields) (Matched, bool)

// Precedence: an explicit field beats a code embedded in the name
var voucherMatchers = []voucherMatcher{
	matchExplicitField,
	matchTrailingToken,
}

// ExtractVoucher separates a member's voucher code from their display name. It
// never fails: input without a recognisable code comes back as Unmatched.
func ExtractVoucher(displayName string, explicit ExplicitFields) VoucherResult {
	name := strings.TrimSpace(displayName)
	for _, match := range voucherMatchers {
		if m, ok := match(name, explicit); ok {
			return m
		}
	}
	return Unmatched{OriginalName: name}
}

func matchExplicitField(name string, explicit ExplicitFields) (Matched, bool) {
	for _, field := range explicit.ordered() {
		groups := voucherToken.FindStringSubmatch(strings.TrimSpace(field))
		if groups == nil {
			continue
		}
		code := normalizeVoucher(groups[1])

		cleaned := strings.TrimSpace(trailingCode(code).ReplaceAllString(name, ""))
		if cleaned == "" {
			cleaned = name
		}
		return Matched{Name: cleaned, Code: code, Source: SourceExplicitField}, true
	}
	return Matched{}, false
}

// trailingCode matches code as the last whole token of a name. The code must
// open the name or follow whitespace, a comma, an opening bracket or '#'.
func trailingCode(code string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[\s,\-]*[\s,(\[#])` + regexp.QuoteMeta(code) + `[)\]]?\s*$`)
}

func matchTrailingToken(name string, _ ExplicitFields) (Matched, bool) {
	groups := trailingVoucher.FindStringSubmatch(name)
	if groups == nil {
		return Matched{}, false
	}
	cleaned := strings.TrimSpace(groups[1])
	if cleaned == "" {
		cleaned = name
	}
	return Matched{Name: cleaned, Code: normalizeVoucher(groups[2]), Source: SourceTrailingName}, true
}

func normalizeVoucher(token string) string {
	return strings.ToUpper(whitespace.ReplaceAllString(token, ""))
}
