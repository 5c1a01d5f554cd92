package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agendasaude/backend/internal/infrastructure/observability"
)

// ObservabilityMiddleware opens a span per request, keyed by the route
// pattern to keep cardinality bounded.
func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}

		ctx, span := observability.StartSpan(r.Context(), route)
		defer span.End()

		observability.SetSpanAttributes(span,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		observability.SetSpanAttributes(span, attribute.Int("http.status_code", rw.statusCode))
	})
}
