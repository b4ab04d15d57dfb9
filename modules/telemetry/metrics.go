// Copyright 2025 Nhat-Nguyen Nguyen
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

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics holds counters and histograms for HTTP endpoint instrumentation.
type HTTPMetrics struct {
	requestCounter    metric.Int64Counter
	durationHisto     metric.Float64Histogram
	responseSizeHisto metric.Int64Histogram
}

// NewHTTPMetrics creates HTTPMetrics on the global meter provider. With
// telemetry disabled the instruments are no-ops.
func NewHTTPMetrics(serviceName string) (*HTTPMetrics, error) {
	meter := otel.Meter(serviceName)

	requestCounter, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHisto, err := meter.Float64Histogram(
		"http_server_duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	responseSizeHisto, err := meter.Int64Histogram(
		"http_server_response_size",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestCounter:    requestCounter,
		durationHisto:     durationHisto,
		responseSizeHisto: responseSizeHisto,
	}, nil
}

// RecordRequest records a single HTTP request. route is the matched mux
// pattern, not the raw path, to keep cardinality bounded.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, statusCode int, durationMs float64, responseSize int64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.durationHisto.Record(ctx, durationMs, metric.WithAttributes(attrs...))
	if responseSize > 0 {
		m.responseSizeHisto.Record(ctx, responseSize, metric.WithAttributes(attrs...))
	}
}

// ProfileMetrics counts profile update outcomes and per-identity lock waits.
type ProfileMetrics struct {
	updates  metric.Int64Counter
	lockWait metric.Float64Histogram
}

func NewProfileMetrics(serviceName string) (*ProfileMetrics, error) {
	meter := otel.Meter(serviceName)

	updates, err := meter.Int64Counter(
		"profile_updates_total",
		metric.WithDescription("Profile update attempts by outcome"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, err
	}

	lockWait, err := meter.Float64Histogram(
		"profile_lock_wait_duration",
		metric.WithDescription("Time spent waiting for the per-identity update lock"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &ProfileMetrics{updates: updates, lockWait: lockWait}, nil
}

// RecordUpdate records one update with outcome "ok", "noop", "invalid" or "error".
func (m *ProfileMetrics) RecordUpdate(ctx context.Context, outcome string) {
	m.updates.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *ProfileMetrics) RecordLockWait(ctx context.Context, waitMs float64) {
	m.lockWait.Record(ctx, waitMs)
}
