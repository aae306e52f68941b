package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fincore/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a server span per request, skipping infrastructure paths
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool { return !unobserved(r.URL.Path) }),
	)
}

// TagSpan adds request, tenant and user attributes to the server span. It
// runs after Tenant so the tenant is known.
func TagSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			span.SetAttributes(attribute.String("request_id", GetRequestID(c)))
			if tenantID, ok := TenantID(c); ok {
				span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
			}
			if claims := GetClaims(c); claims != nil {
				span.SetAttributes(attribute.String("user_id", claims.UserID))
			}
		}
		c.Next()
	}
}

// Metrics records request counts, latencies and in-flight requests by route
// template. Unmatched routes are reported as "unmatched".
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if unobserved(c.Request.URL.Path) {
			c.Next()
			return
		}
		done := m.RequestStarted()
		start := time.Now()
		c.Next()
		done()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Profiling labels CPU and allocation profiles with the route template so
// Pyroscope can break samples down per endpoint
func Profiling(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if !enabled || route == "" || unobserved(c.Request.URL.Path) {
			c.Next()
			return
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels("route", route, "method", c.Request.Method), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// unobserved reports infrastructure paths that stay out of traces and metrics
func unobserved(path string) bool {
	switch path {
	case "/health", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/swagger/")
}
