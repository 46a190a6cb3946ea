package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photobook/internal/metrics"
	"github.com/kozaktomas/photobook/internal/web/handlers"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	booksHandler := handlers.NewBooksHandler(s.config, s.builder, s.registry, s.store)
	editHandler := handlers.NewEditHandler(s.registry)
	configHandler := handlers.NewConfigHandler(s.config)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)
		r.Get("/layouts", handlers.ListLayouts)

		// Books
		r.Get("/books", booksHandler.List)
		r.Post("/books", booksHandler.Create)
		r.Get("/books/{id}", booksHandler.Get)
		r.Delete("/books/{id}", booksHandler.Delete)
		r.Get("/books/{id}/pages/{pageId}", editHandler.Page)

		// Editing
		r.Post("/books/{id}/intents", editHandler.Intent)
		r.Post("/books/{id}/gesture", editHandler.PointerDown)
		r.Put("/books/{id}/gesture", editHandler.PointerMove)
		r.Delete("/books/{id}/gesture", editHandler.PointerUp)
		r.Post("/books/{id}/undo", editHandler.Undo)
		r.Post("/books/{id}/redo", editHandler.Redo)
	})

	media := http.FileServer(http.Dir(s.config.Web.MediaDir))
	s.router.Handle("/media/*", http.StripPrefix("/media", middleware.MediaHeaders(media)))

	s.router.Handle("/metrics", metrics.Handler())
}
