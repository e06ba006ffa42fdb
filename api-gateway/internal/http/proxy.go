package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/fjod/tradecart/pkg/logger"
	"go.uber.org/zap"
)

// NewServiceProxy forwards requests under prefix to target with the prefix
// removed, so /api/v1/cart/items/p1 reaches the cart service as /items/p1.
func NewServiceProxy(name string, target *url.URL, prefix string, transport http.RoundTripper) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			path := strings.TrimPrefix(pr.In.URL.Path, prefix)
			if path == "" {
				path = "/"
			}
			pr.Out.URL.Path = path
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.FromContext(r.Context()).Warn("upstream request failed",
				zap.String("upstream", name),
				zap.Error(err))
			httpx.RespondError(w, http.StatusBadGateway, name+" unavailable")
		},
	}
}
