package export

import (
	"regexp"
	"strings"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
)

// CashBillDocument is the document type prefix for cash bill files
const CashBillDocument = "cash-bill"

// AllMembersScope names a file covering every member
const AllMembersScope = "all-members"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SanitizeFilename replaces anything outside [a-zA-Z0-9_.-] with an underscore
func SanitizeFilename(s string) string {
	return unsafeFilenameChars.ReplaceAllString(s, "_")
}

// Scope picks the identifier used in a single-member filename: the profile name,
// then the member id, then the user id. Without a selected member the scope
// covers everyone.
func Scope(selected *uuid.UUID, snapshots []*domain.MemberCashBillSnapshot) string {
	if selected == nil {
		return AllMembersScope
	}
	if len(snapshots) > 0 && snapshots[0] != nil {
		s := snapshots[0]
		if name := strings.TrimSpace(s.Name); name != "" {
			return SanitizeFilename(name)
		}
		if memberID := strings.TrimSpace(s.MemberID); memberID != "" {
			return SanitizeFilename(memberID)
		}
		if s.UserID != uuid.Nil {
			return SanitizeFilename(s.UserID.String())
		}
	}
	return SanitizeFilename(selected.String())
}

// Filename builds <document-type>-<scope>-<YYYY-MM-DD>.<ext>
func Filename(documentType, scope string, date time.Time, format Format) string {
	return documentType + "-" + scope + "-" + date.Format(time.DateOnly) + "." + format.Extension()
}
