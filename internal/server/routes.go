package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrlinks/internal/auth"
	"qrlinks/internal/db"
	"qrlinks/internal/email"
	"qrlinks/internal/handlers"
	"qrlinks/internal/middleware"
	"qrlinks/internal/qr"
	"qrlinks/internal/redirect"
	"qrlinks/internal/scans"
	"qrlinks/internal/stats"
	"qrlinks/internal/team"
)

// scanRecorder adapts the worker-pool recorder to the redirect gate's
// callback shape.
type scanRecorder struct {
	rec *scans.Recorder
}

func (s scanRecorder) Record(qrCodeID uuid.UUID, ip, userAgent string) {
	s.rec.Record(scans.Event{QRCodeID: qrCodeID, IP: ip, UserAgent: userAgent})
}

// RegisterRoutes wires middleware, handlers, and routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, recorder *scans.Recorder) error {
	tokens := auth.NewTokenManager(s.Cfg.JWTSecret, s.Cfg.JWTTTL)
	teams := team.NewResolver(database)
	notifier := email.NewNotifier(s.Cfg, s.Log)
	renderer := qr.NewRenderer(s.Cfg.BaseURL)
	gate := redirect.NewGate(database, scanRecorder{rec: recorder}, s.Cfg.BaseURL)
	aggregator := stats.NewAggregator(database, s.Log)

	authMiddleware := middleware.NewAuthMiddleware(tokens, database)

	authHandler := handlers.NewAuthHandler(database, s.Cfg, tokens, notifier)
	qrHandler := handlers.NewQRCodeHandler(database, s.Cfg, teams, renderer)
	redirectHandler := handlers.NewRedirectHandler(gate, s.Cfg)
	statsHandler := handlers.NewStatsHandler(database, teams, aggregator)
	invitationHandler := handlers.NewInvitationHandler(database, s.Cfg, tokens, notifier)
	userHandler := handlers.NewUserHandler(database, teams)
	probeHandler := handlers.NewProbeHandler(database)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth
	s.App.Post("/auth/signup", authHandler.Signup)
	s.App.Post("/auth/login", authHandler.Login)
	s.App.Get("/auth/verify", authHandler.Verify)
	s.App.Get("/auth/me", authMiddleware.RequireAuth, authHandler.Me)

	// OIDC login, only when an issuer is configured
	if s.Cfg.IsOIDCEnabled() {
		oidcHandler, err := handlers.NewOIDCHandler(ctx, s.Cfg, database, tokens)
		if err != nil {
			s.Log.Warn("OIDC initialization failed, provider login disabled", "error", err)
		} else {
			s.App.Get("/auth/oidc/login", oidcHandler.Login)
			s.App.Get("/auth/oidc/callback", oidcHandler.Callback)
		}
	}

	// QR code management
	s.App.Get("/api/qrcodes", authMiddleware.RequireAuth, qrHandler.List)
	s.App.Post("/api/qrcodes", authMiddleware.RequireAuth, qrHandler.Create)
	s.App.Get("/api/qrcodes/:id", authMiddleware.RequireAuth, qrHandler.Get)
	s.App.Put("/api/qrcodes/:id", authMiddleware.RequireAuth, qrHandler.Update)
	s.App.Delete("/api/qrcodes/:id", authMiddleware.RequireAuth, qrHandler.Delete)
	s.App.Get("/api/qrcodes/:id/image", authMiddleware.RequireAuth, qrHandler.Image)

	// Dashboard
	s.App.Get("/api/stats", authMiddleware.RequireAuth, statsHandler.Dashboard)

	// Team and invitations
	s.App.Get("/api/team", authMiddleware.RequireAuth, userHandler.Team)
	s.App.Get("/api/invitations", authMiddleware.RequireAuth, invitationHandler.List)
	s.App.Post("/api/invitations", authMiddleware.RequireAuth, invitationHandler.Create)
	s.App.Post("/api/invitations/accept", invitationHandler.Accept)

	// Public scan endpoint. POST carries the password form for protected codes.
	s.App.Get("/s/:slug", redirectHandler.Resolve)
	s.App.Post("/s/:slug", redirectHandler.Resolve)

	return nil
}
