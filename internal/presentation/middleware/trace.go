package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"postbridge/pkg/logger"
)

const tracerName = "postbridge/http"

// Trace starts a server span per request, continuing any trace context sent
// by the caller, and logs the request once it is served.
func Trace() echo.MiddlewareFunc {
	tracer := otel.Tracer(tracerName)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", req.Method, route),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("http.route", route),
				),
			)
			defer span.End()

			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			span.SetAttributes(attribute.Int("http.response.status_code", status))

			if status >= 500 {
				span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
			}

			logger.Debug("request served",
				"method", req.Method,
				"route", route,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			)

			return nil
		}
	}
}
