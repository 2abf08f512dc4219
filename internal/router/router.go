package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sweet-shop/internal/config"
	"sweet-shop/internal/handler"
	"sweet-shop/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Sweet  *handler.SweetHandler
	Audit  *handler.AuditHandler
	Docs   *handler.DocsHandler
	System *handler.SystemHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.NewRealIP(cfg.TrustedProxies).Handler)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/", h.System.Root)
	r.Get("/health", h.System.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/docs", h.Docs.SwaggerUI)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/sweets", func(sweets chi.Router) {
			sweets.Use(authMiddleware.RequireAuth)

			sweets.Get("/", h.Sweet.List)
			sweets.Post("/", h.Sweet.Create)
			sweets.Get("/search", h.Sweet.Search)
			sweets.Get("/{id}", h.Sweet.Get)
			sweets.Put("/{id}", h.Sweet.Update)
			sweets.With(authMiddleware.RequireAdmin).Delete("/{id}", h.Sweet.Delete)
			sweets.Post("/{id}/purchase", h.Sweet.Purchase)
			sweets.With(authMiddleware.RequireAdmin).Post("/{id}/restock", h.Sweet.Restock)
		})

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireAdmin).Get("/audit", h.Audit.List)
	})

	return r
}
