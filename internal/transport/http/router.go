package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/onehope/resources-api/internal/application/auth"
	storageapp "github.com/onehope/resources-api/internal/application/storage"
	"github.com/onehope/resources-api/internal/config"
	"github.com/onehope/resources-api/internal/directory"
	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/identity"
	"github.com/onehope/resources-api/internal/transport/http/handler"
	appmiddleware "github.com/onehope/resources-api/internal/transport/http/middleware"
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
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.Session(deps.Sessions, cfg.SessionCookieName))

	// 5 requests/second, burst of 10, applied to the public login endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	directorySvc := directory.NewService(deps.UserRepo, cfg.AdminEmails, nil)
	authSvc := auth.NewService(auth.ServiceDeps{
		Codes:         deps.Codes,
		CodeVerifier:  identity.NewCodeVerifier(deps.Codes),
		TokenVerifier: deps.TokenVerifier,
		Directory:     directorySvc,
		Sessions:      deps.Sessions,
		Mailer:        deps.Mailer,
		Logger:        deps.Logger,
	})
	storageSvc := storageapp.NewService(storageapp.ServiceDeps{
		Presigner: deps.Presigner,
		Log:       deps.DownloadRepo,
		Saved:     deps.SavedRepo,
		Directory: directorySvc,
		Logger:    deps.Logger,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, handler.CookieConfig{
		Name:   cfg.SessionCookieName,
		TTL:    deps.Sessions.TTL(),
		Secure: cfg.IsProduction(),
	})
	storageH := handler.NewStorageHandler(storageSvc)
	savedH := handler.NewSavedHandler(storageSvc)
	userH := handler.NewUserHandler(directorySvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/request-code", authH.RequestCode)
		r.With(sensitiveRL.Limit).Post("/auth/verify-code", authH.VerifyCode)
		r.With(sensitiveRL.Limit).Post("/auth/exchange-token", authH.ExchangeToken)
		r.Post("/auth/logout", authH.Logout)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.RoleUser))

			r.Get("/auth/session", authH.Me)
			r.Get("/storage/presign/download", storageH.PresignDownload)
			r.Get("/storage/presign/preview", storageH.PresignPreview)
			r.Get("/downloads/recent", storageH.RecentDownloads)
			r.Get("/saved", savedH.List)
			r.Post("/saved/{id}", savedH.Save)
			r.Delete("/saved/{id}", savedH.Unsave)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/storage/presign/upload", storageH.PresignUpload)
				r.Get("/users", userH.List)
				r.Put("/users/{email}", userH.Update)
			})
		})
	})

	return r
}
