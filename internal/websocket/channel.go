package websocket

import "github.com/google/uuid"

// AdminChannel receives every event on the admin dashboard
const AdminChannel = "admin"

// LoanChannel receives events about one loan
func LoanChannel(loanID uuid.UUID) string {
	return "loan:" + loanID.String()
}
