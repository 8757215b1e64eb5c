// Copyright 2026 The Edgeroute Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationScope names the meter and tracer this package creates.
const instrumentationScope = "edgeroute.dev/router"

// OTelOption defines functional options for OTelRecorder configuration.
type OTelOption func(*otelConfig)

type otelConfig struct {
	serviceName    string
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	usePrometheus  bool
	excludePaths   []string
}

// WithServiceName sets the service.name resource attribute for the
// recorder-owned meter provider. Ignored when a custom meter provider
// is supplied.
func WithServiceName(name string) OTelOption {
	return func(cfg *otelConfig) {
		cfg.serviceName = name
	}
}

// WithMeterProvider uses a caller-managed meter provider instead of
// creating one. The recorder will not flush or shut it down.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(cfg *otelConfig) {
		cfg.meterProvider = mp
	}
}

// WithTracerProvider uses a caller-managed tracer provider. Defaults to
// the global provider, which is a no-op unless the application
// configured one.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(cfg *otelConfig) {
		cfg.tracerProvider = tp
	}
}

// WithPrometheus makes the recorder own a meter provider backed by a
// private Prometheus registry, exposed via PrometheusRegistry. A
// private registry avoids collisions with the application's default
// registry.
func WithPrometheus() OTelOption {
	return func(cfg *otelConfig) {
		cfg.usePrometheus = true
	}
}

// WithExcludePaths excludes exact request paths (e.g. "/health",
// "/metrics") from metrics and tracing. Excluded requests still run
// normally; they just record nothing.
func WithExcludePaths(paths ...string) OTelOption {
	return func(cfg *otelConfig) {
		cfg.excludePaths = append(cfg.excludePaths, paths...)
	}
}

// OTelRecorder is an ObservabilityRecorder built on OpenTelemetry.
// It records a request counter and a duration histogram keyed by
// method, route pattern, and status code, and opens a server span per
// request.
//
// Example:
//
//	rec, err := router.NewOTelRecorder(
//	    router.WithServiceName("orders"),
//	    router.WithPrometheus(),
//	    router.WithExcludePaths("/health"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r := router.MustNew(router.WithObservability(rec))
type OTelRecorder struct {
	tracer          trace.Tracer
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram

	ownedProvider *sdkmetric.MeterProvider // Non-nil only when the recorder created it
	registry      *promclient.Registry     // Non-nil only with WithPrometheus
	exclude       map[string]struct{}
}

// otelRequestState is the opaque per-request token.
type otelRequestState struct {
	start  time.Time
	span   trace.Span
	method string
}

// NewOTelRecorder creates an OpenTelemetry observability recorder.
//
// Provider selection: a custom meter provider wins if supplied;
// WithPrometheus creates a recorder-owned provider with a private
// registry; otherwise the global otel meter provider is used.
func NewOTelRecorder(opts ...OTelOption) (*OTelRecorder, error) {
	cfg := &otelConfig{
		serviceName: "router",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &OTelRecorder{}
	if len(cfg.excludePaths) > 0 {
		r.exclude = make(map[string]struct{}, len(cfg.excludePaths))
		for _, p := range cfg.excludePaths {
			r.exclude[p] = struct{}{}
		}
	}

	var mp metric.MeterProvider
	switch {
	case cfg.meterProvider != nil:
		mp = cfg.meterProvider
	case cfg.usePrometheus:
		r.registry = promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(r.registry))
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		r.ownedProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(resource.NewSchemaless(
				attribute.String("service.name", cfg.serviceName),
			)),
		)
		mp = r.ownedProvider
	default:
		mp = otel.GetMeterProvider()
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	r.tracer = tp.Tracer(instrumentationScope)

	meter := mp.Meter(instrumentationScope)
	var err error
	r.requestCount, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("request count instrument: %w", err)
	}
	r.requestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request handling duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("request duration instrument: %w", err)
	}

	return r, nil
}

// PrometheusRegistry returns the private registry backing the
// recorder-owned provider, or nil when WithPrometheus was not used.
// Serve it with promhttp.HandlerFor.
func (r *OTelRecorder) PrometheusRegistry() *promclient.Registry {
	return r.registry
}

// OnRequestStart implements ObservabilityRecorder.
func (r *OTelRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if _, excluded := r.exclude[req.URL.Path]; excluded {
		return ctx, nil
	}

	ctx, span := r.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)

	return ctx, &otelRequestState{
		start:  time.Now(),
		span:   span,
		method: req.Method,
	}
}

// OnRequestEnd implements ObservabilityRecorder.
func (r *OTelRecorder) OnRequestEnd(ctx context.Context, state any, res *Response, routePattern string) {
	s, ok := state.(*otelRequestState)
	if !ok || s == nil {
		return
	}

	// A nil response means the chain fell through (the transport
	// substitutes a default success) or the handler failed upstream.
	status := 0
	if res != nil {
		status = res.Status
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", s.method),
		attribute.String("http.route", routePattern),
		attribute.Int("http.status_code", status),
	)
	r.requestCount.Add(ctx, 1, attrs)
	r.requestDuration.Record(ctx, time.Since(s.start).Seconds(), attrs)

	s.span.SetAttributes(
		attribute.String("http.route", routePattern),
		attribute.Int("http.status_code", status),
	)
	s.span.End()
}

// Shutdown flushes and shuts down the recorder-owned meter provider.
// It is a no-op when the provider was supplied by the caller.
func (r *OTelRecorder) Shutdown(ctx context.Context) error {
	if r.ownedProvider == nil {
		return nil
	}
	if err := r.ownedProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("meter provider flush: %w", err)
	}
	if err := r.ownedProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	return nil
}

// Compile-time check that OTelRecorder implements ObservabilityRecorder.
var _ ObservabilityRecorder = (*OTelRecorder)(nil)
