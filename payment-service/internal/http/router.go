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

func NewRouter(h *PaymentHandler, verifier *auth.Verifier, log *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Called by the gateway, which carries no user token.
	r.Post("/webhook/phonepe", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		r.Post("/pay/{orderId}", h.Pay)
		r.Get("/status/{merchantTransactionId}", h.Status)
	})

	return otelhttp.NewHandler(r, "payment-service")
}
