package http

import (
	"net/http"
	"time"

	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/fjod/tradecart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func NewRouter(h *CartHandler, verifier *auth.Verifier, log *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Route("/items/{productId}", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Patch("/", h.UpdateItem)
			r.Delete("/", h.RemoveItem)
		})
	})

	return otelhttp.NewHandler(r, "cart-service")
}
