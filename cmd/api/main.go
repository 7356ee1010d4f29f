package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/config"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/export"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/handler"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/middleware"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/repository/postgres"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/repository/sqlite"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/repository/storage"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// stores bundles the repositories of one storage backend
type stores struct {
	members  domain.MemberRepository
	loans    domain.LoanRepository
	payments domain.LoanPaymentRepository
	ledger   domain.LedgerStore
	cashBill domain.CashBillRepository
	close    func()
}

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	st, err := openStores(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer st.close()

	// Initialize services
	clock := service.NewClock(cfg.CashBill.Location)
	hub := websocket.NewHub()

	memberService := service.NewMemberService(st.members)
	loanService := service.NewLoanService(st.loans, st.payments, st.members, clock)
	loanService.SetEventPublisher(hub)
	paymentService := service.NewLoanPaymentService(st.ledger, st.payments, st.loans, clock, cfg.LedgerMaxRetries)
	paymentService.SetEventPublisher(hub)
	cashBillService := service.NewCashBillService(st.cashBill, export.DefaultRegistry(), clock, cfg.CashBill.Title)
	cashBillService.SetEventPublisher(hub)

	if cfg.S3.Enabled() {
		archive, err := storage.NewS3DocumentArchive(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize document archive")
		}
		cashBillService.SetArchive(archive)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Archiving generated cash bills")
	}

	// Initialize auth
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, memberService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, memberService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}

	exportLimiter := middleware.NewRateLimiterWithConfig(cfg.CashBill.RatePerMinute, cfg.CashBill.Burst)
	defer exportLimiter.Stop()

	// Initialize handlers
	memberHandler := handler.NewMemberHandler(memberService)
	loanHandler := handler.NewLoanHandler(loanService)
	paymentHandler := handler.NewLoanPaymentHandler(paymentService)
	cashBillHandler := handler.NewCashBillHandler(cashBillService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-Member-Count", "X-Archive-URL", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":            "ok",
			"websocket_clients": hub.TotalClientCount(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, exportLimiter, memberHandler, loanHandler, paymentHandler, cashBillHandler)
	handler.RegisterWebSocketRoute(e, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStores connects to PostgreSQL, or to a local SQLite file when
// DATABASE_URL starts with sqlite:
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.UsesSQLite() {
		db, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath()).Msg("Using SQLite database")
		return &stores{
			members:  sqlite.NewMemberRepository(db),
			loans:    sqlite.NewLoanRepository(db),
			payments: sqlite.NewLoanPaymentRepository(db),
			ledger:   sqlite.NewLedgerStore(db),
			cashBill: sqlite.NewCashBillRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close SQLite database")
				}
			},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Verify database connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("Connected to database")

	return &stores{
		members:  postgres.NewMemberRepository(pool),
		loans:    postgres.NewLoanRepository(pool),
		payments: postgres.NewLoanPaymentRepository(pool),
		ledger:   postgres.NewLedgerStore(pool),
		cashBill: postgres.NewCashBillRepository(pool),
		close:    pool.Close,
	}, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
