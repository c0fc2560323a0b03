package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Logger *slog.Logger
	// Limiter throttles the import endpoints; nil means unlimited.
	Limiter *ClientLimiter
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(logger))
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/records", handler.ListRecords)
		r.Post("/records", handler.CreateRecord)
		r.Delete("/records", handler.ClearRecords)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(opts.Limiter, logger))
			r.Post("/records/bulk", handler.BulkImport)
			r.Post("/import/preview", handler.PreviewImport)
			r.Post("/import/{token}/commit", handler.CommitImport)
		})
		r.Delete("/import/{token}", handler.DiscardImport)

		r.Get("/dashboard", handler.Dashboard)
		r.Get("/products/{product}/monthly", handler.ProductMonthly)
		r.Get("/filters/options", handler.FilterOptions)
		r.Get("/export.xlsx", handler.ExportXLSX)
		r.Get("/export.csv", handler.ExportCSV)
	})

	return r
}
