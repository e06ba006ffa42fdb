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

func NewRouter(h *OrderHandler, verifier *auth.Verifier, log *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authorized by the capability token in the body.
	r.Put("/payment-status", h.UpdatePaymentStatus)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		r.Post("/order", h.CreateOrder)
		r.Get("/orders", h.ListOrders)
		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Patch("/", h.PatchOrder)
			r.Delete("/", h.DeleteOrder)
		})
		r.With(auth.RequireAdmin).Get("/admin/orders/{orderId}", h.GetOrderAdmin)
	})

	return otelhttp.NewHandler(r, "orders-service")
}
