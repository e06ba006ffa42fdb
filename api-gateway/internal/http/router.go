package http

import (
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/tradecart/pkg/auth"
	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/fjod/tradecart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	cartPrefix    = "/api/v1/cart"
	ordersPrefix  = "/api/v1/orders"
	paymentPrefix = "/api/v1/payment"
)

// Targets are the base URLs of the services behind the gateway.
type Targets struct {
	Cart    *url.URL
	Orders  *url.URL
	Payment *url.URL
}

func NewRouter(t Targets, verifier *auth.Verifier, log *zap.Logger, timeout time.Duration) http.Handler {
	transport := otelhttp.NewTransport(http.DefaultTransport)
	cart := NewServiceProxy("cart service", t.Cart, cartPrefix, transport)
	orders := NewServiceProxy("order service", t.Orders, ordersPrefix, transport)
	payment := NewServiceProxy("payment service", t.Payment, paymentPrefix, transport)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(ForwardRequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The gateway posts callbacks without a user token.
	r.Post(paymentPrefix+"/webhook/phonepe", payment.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		r.Handle(cartPrefix, cart)
		r.Handle(cartPrefix+"/*", cart)
		r.Handle(ordersPrefix+"/*", orders)
		r.Handle(paymentPrefix+"/*", payment)
	})

	return otelhttp.NewHandler(r, "api-gateway")
}
