package travio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricRequests = "travio.client.requests"
	MetricDuration = "travio.client.request.duration"
)

// Request outcomes recorded in the "outcome" attribute.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport"
	OutcomeAPI       = "api"
	OutcomeDecode    = "decode"
	OutcomeError     = "error"
)

var ErrNilMeter = errors.New("travio: nil meter")

// Metrics records calls to the API as OpenTelemetry measurements.
// Install it with WithOnRequest(m.Hook()).
type Metrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Calls made to the Travio API."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", MetricRequests, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of calls to the Travio API."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", MetricDuration, err)
	}

	return &Metrics{requests: requests, duration: duration}, nil
}

// Hook returns a RequestHook feeding m.
func (m *Metrics) Hook() RequestHook {
	return func(res RequestResult) {
		attrs := metric.WithAttributes(
			attribute.String("method", res.Method),
			attribute.String("route", route(res.Endpoint)),
			attribute.Int("status_code", res.StatusCode),
			attribute.String("outcome", Outcome(res.Err)),
		)

		ctx := context.Background()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, res.Duration.Seconds(), attrs)
	}
}

// Outcome classifies err into one of the Outcome constants.
func Outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &apiErr):
		return OutcomeAPI
	case errors.Is(err, ErrTransport):
		return OutcomeTransport
	case errors.Is(err, ErrMalformedResponse):
		return OutcomeDecode
	default:
		return OutcomeError
	}
}

// route drops record ids so booking/cart/<id> and rest/<repo>/<id> share a
// series: only the first two segments are kept.
func route(endpoint string) string {
	parts := strings.SplitN(strings.Trim(endpoint, "/"), "/", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}
