package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/safe2go/helpdesk/internal/api"
	"github.com/safe2go/helpdesk/internal/api/handlers"
	"github.com/safe2go/helpdesk/internal/api/middleware"
)

type RouterConfig struct {
	TokenResolver       middleware.TokenResolver
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	CaseHandler         *handlers.CaseHandler
	CommentHandler      *handlers.CommentHandler
	NotificationHandler *handlers.NotificationHandler
	KnowledgeHandler    *handlers.KnowledgeHandler
	DashboardHandler    *handlers.DashboardHandler
	ActivityHandler     *handlers.ActivityHandler
	AttachmentHandler   *handlers.AttachmentHandler
	WebhookHandler      *handlers.WebhookHandler
	EventsHandler       http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The tracker calls this unauthenticated; the handler always answers 200.
	r.Post("/webhook/jira", cfg.WebhookHandler.Receive)

	r.Post("/auth/register", cfg.AuthHandler.Register)
	r.Post("/auth/login", cfg.AuthHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.TokenResolver))

		r.Get("/auth/me", cfg.AuthHandler.Me)

		r.Route("/cases", func(r chi.Router) {
			r.Post("/", cfg.CaseHandler.Create)
			r.Get("/", cfg.CaseHandler.List)
			r.Get("/{id}", cfg.CaseHandler.Get)
			r.Put("/{id}", cfg.CaseHandler.Update)
			r.Get("/{id}/similar", cfg.CaseHandler.Similar)

			r.Post("/{id}/comments", cfg.CommentHandler.Create)
			r.Get("/{id}/comments", cfg.CommentHandler.List)

			r.Post("/{id}/attachments", cfg.AttachmentHandler.InitUpload)
			r.Get("/{id}/attachments", cfg.AttachmentHandler.List)
			r.Post("/{id}/attachments/{attachmentID}/complete", cfg.AttachmentHandler.CompleteUpload)
			r.Get("/{id}/attachments/{attachmentID}/download", cfg.AttachmentHandler.Download)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Get("/unread", cfg.NotificationHandler.UnreadCount)
			r.Put("/{id}/read", cfg.NotificationHandler.MarkRead)
			r.Put("/read-all", cfg.NotificationHandler.MarkAllRead)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/stats", cfg.KnowledgeHandler.Stats)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", cfg.DashboardHandler.Stats)
			r.Get("/charts", cfg.DashboardHandler.Charts)
		})

		r.Get("/events", cfg.EventsHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Delete("/cases/{id}", cfg.CaseHandler.Delete)
			r.Delete("/cases/{id}/attachments/{attachmentID}", cfg.AttachmentHandler.Delete)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", cfg.UserHandler.Create)
				r.Get("/", cfg.UserHandler.List)
				r.Get("/pending", cfg.UserHandler.Pending)
				r.Put("/{id}", cfg.UserHandler.Update)
				r.Put("/{id}/approve", cfg.UserHandler.Approve)
				r.Put("/{id}/reject", cfg.UserHandler.Reject)
				r.Delete("/{id}", cfg.UserHandler.Delete)
			})

			r.Get("/dashboard/recurrent", cfg.DashboardHandler.Recurrent)

			r.Route("/activities", func(r chi.Router) {
				r.Post("/", cfg.ActivityHandler.Create)
				r.Get("/", cfg.ActivityHandler.List)
				r.Get("/current", cfg.ActivityHandler.ListCurrent)
				r.Put("/{id}/stop", cfg.ActivityHandler.Stop)
				r.Delete("/{id}", cfg.ActivityHandler.Delete)
			})
		})
	})

	return r
}
