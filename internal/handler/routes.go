package handler

import (
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. Every admin route requires an Auth0
// token belonging to a member with the admin role.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, exportLimiter *middleware.RateLimiter, memberHandler *MemberHandler, loanHandler *LoanHandler, paymentHandler *LoanPaymentHandler, cashBillHandler *CashBillHandler) {
	// API version 1
	api := e.Group("/api/v1")

	admin := api.Group("/admin")
	admin.Use(authMiddleware.Authenticate())

	// Member routes
	admin.GET("/members", memberHandler.ListMembers)

	// Loan routes
	loans := admin.Group("/loans")
	loans.GET("", loanHandler.ListLoans)
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("/:loanId", loanHandler.GetLoan)
	loans.GET("/:loanId/payments", paymentHandler.ListLoanPayments)
	loans.POST("/:loanId/payments", paymentHandler.RecordPayment)

	// Payment history
	admin.GET("/payments", paymentHandler.ListPayments)

	// Cash bill exports (rate limited per admin)
	admin.POST("/cash-bills", cashBillHandler.Export, middleware.RateLimitMiddleware(exportLimiter))
}

// RegisterWebSocketRoute exposes the live event stream. It authenticates from
// the token query parameter, since browsers cannot set headers on upgrades.
func RegisterWebSocketRoute(e *echo.Echo, wsHandler *WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWS)
}
