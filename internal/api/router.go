package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/societyhub/backoffice-api/internal/api/handler"
	"github.com/societyhub/backoffice-api/internal/api/middleware"
	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/payment"
	"github.com/societyhub/backoffice-api/internal/core/ports"
	"github.com/societyhub/backoffice-api/internal/core/ratelimit"
	"github.com/societyhub/backoffice-api/internal/core/service"
	"github.com/societyhub/backoffice-api/internal/infrastructure/config"
	mongodb "github.com/societyhub/backoffice-api/internal/infrastructure/db/mongo"
	redisdb "github.com/societyhub/backoffice-api/internal/infrastructure/db/redis"
)

// throttledRoutes is the exact-match allow-list of auth-sensitive paths the
// login throttle applies to. Everything else passes through untouched.
var throttledRoutes = []string{
	"/auth/otp/send",
	"/auth/root/login",
	"/auth/login",
}

// NewRouter builds the Echo instance with the full request-security and
// payment-integrity pipeline wired in. Construction-time validation errors
// (short signing key, missing fallback adapter) surface here so the caller
// can fail fast.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("backoffice"))

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	roots := mongodb.NewRootAccountRepository(db)
	payments := mongodb.NewPaymentRepository(db)
	otp := redisdb.NewOTPStore(rdb)

	// --- Token signing ---
	signer, err := service.NewTokenSigner(cfg.JWTSecret, roots)
	if err != nil {
		return nil, err
	}

	// --- Payment pipeline ---
	registry, err := payment.NewRegistry(
		payment.DefaultAdapter{},
		payment.RazorpayAdapter{},
		payment.StripeAdapter{},
	)
	if err != nil {
		return nil, err
	}
	verifier := payment.NewSignatureVerifier(payment.ParseProviderSecrets(cfg.Webhook.Secrets), cfg.Webhook.Strict)
	webhookService := service.NewWebhookService(registry, verifier, payments, audit, log)

	// --- Auth ---
	authService := service.NewAuthService(
		users, roots, otp, signer, audit,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLMin)*time.Minute,
		log,
	)

	// --- Rate limiting ---
	window := time.Duration(cfg.RateLimit.WindowSec) * time.Second
	var limiter ports.RateLimitStore
	if cfg.RateLimit.Backend == "redis" {
		limiter = redisdb.NewRateLimitStore(rdb, window)
	} else {
		limiter = ratelimit.NewStore(window)
	}
	e.Use(middleware.LoginThrottle(middleware.ThrottleConfig{
		Store:       limiter,
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Routes:      throttledRoutes,
		Audit:       audit,
	}))

	authMiddleware := middleware.Auth(signer, audit)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	paymentHandler := handler.NewPaymentHandler(payments)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	// --- Auth routes (throttled above) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/root/login", authHandler.RootLogin)
	e.POST("/auth/otp/send", authHandler.SendOTP)
	e.POST("/auth/otp/login", authHandler.OTPLogin)

	// --- Payment provider callbacks (signature-verified, not token-authed) ---
	e.POST("/webhooks/payments/:provider", webhookHandler.HandleCallback)

	// --- Authenticated surface; business modules hang off this group ---
	protected := e.Group("/api", authMiddleware)
	protected.GET("/me", handler.Me)
	protected.POST("/root/revoke-tokens", authHandler.RevokeRootTokens)
	protected.POST("/payments/initiate", paymentHandler.Initiate,
		middleware.RBAC(domain.RoleAdmin, domain.RoleStaff, domain.RoleResident))

	// --- Observability (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
