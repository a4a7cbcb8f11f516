package middleware

import (
	"log/slog"
	"net/http"

	"github.com/tgiffonirs/gomarketplace/pkg/logger"
)

// ClientIDHeader optionally identifies the UI client driving the cart.
const ClientIDHeader = "X-Client-ID"

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, client_id, trace_id and span_id. Mount it after
// RequestLogging and Tracing so those fields exist.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := r.Header.Get(ClientIDHeader); id != "" {
				ctx = logger.WithClientID(ctx, id)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
