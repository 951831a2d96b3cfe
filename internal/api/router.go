package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/marzolo/thoughts-bot/internal/config"
	"github.com/marzolo/thoughts-bot/internal/pending"
	"github.com/marzolo/thoughts-bot/internal/registry"
)

// ApiDependencies contains the stores the read-only ops API exposes.
type ApiDependencies struct {
	Config   *config.Config
	Registry *registry.ChatRegistry
	Pending  *pending.Registry
}

// SetupRoutes configures all API routes. Everything except the health check
// sits behind the bearer-token middleware.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Get("/api/health", HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.APIToken))
		r.Get("/api/chats", ChatsHandler(deps))
		r.Get("/api/pending", PendingHandler(deps))
	})
}
