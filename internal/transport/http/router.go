package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glucotrack/api/internal/application/auth"
	"github.com/glucotrack/api/internal/application/user"
	"github.com/glucotrack/api/internal/config"
	"github.com/glucotrack/api/internal/ratelimit"
	"github.com/glucotrack/api/internal/transport/http/handler"
	appmiddleware "github.com/glucotrack/api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	limiter := ratelimit.New(deps.KV)
	gate := appmiddleware.NewGate(limiter, appmiddleware.DefaultRouteLimits())
	r.Use(gate.Limit)

	authMw := appmiddleware.Auth(deps.JWTProvider)

	otp := auth.NewOTPChallenge(deps.KV, deps.Mailer)
	resetFlow := auth.NewPasswordResetFlow(deps.KV, deps.UserRepo, deps.Mailer, deps.AuditRepo, cfg.ResetLinkBaseURL)
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:   deps.UserRepo,
		Tokens:  deps.JWTProvider,
		OTP:     otp,
		Limiter: limiter,
		Mailer:  deps.Mailer,
		Audit:   deps.AuditRepo,
	})
	userSvc := user.NewService(deps.UserRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, resetFlow)
	userH := handler.NewUserHandler(userSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/mfa/verify", authH.VerifyMFA)
			r.Post("/refresh", authH.Refresh)
			r.Post("/password/forgot", authH.ForgotPassword)
			r.Post("/password/reset", authH.ResetPassword)

			// ── Authenticated routes ─────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Get("/me", userH.Me)
				r.Put("/me", userH.UpdateMe)
				r.Post("/mfa/setup", authH.SetupMFA)
				r.Post("/mfa/confirm", authH.ConfirmMFA)
				r.Post("/password/change", authH.ChangePassword)
			})
		})
	})

	return r
}
