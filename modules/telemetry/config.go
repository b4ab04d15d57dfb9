// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import "time"

type Protocol string

const (
	ProtocolHTTP Protocol = "http/protobuf"
	ProtocolGRPC Protocol = "grpc"
)

type Config struct {
	// When false, Init installs nothing and the global no-op providers stay in place.
	Enabled bool `env:"TELEMETRY_ENABLED" envDefault:"false"`

	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"taskboard-api"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"ENVIRONMENT" envDefault:"local"`

	Protocol Protocol `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"http/protobuf"`

	// Either a full URL ("http://otel-collector:4318") or host:port.
	// Empty falls back to the exporter's own OTEL_EXPORTER_OTLP_* handling.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`

	// 0..1: sampling ratio (0=never,1=all,else parentbased+ratio).
	SamplerRatio float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1"`

	StartupTimeout time.Duration `env:"OTEL_STARTUP_TIMEOUT" envDefault:"5s"`

	DisableMetrics bool `env:"OTEL_METRICS_DISABLED" envDefault:"false"`

	// Extra resource attributes.
	ResourceAttrs map[string]string `env:"OTEL_RESOURCE_ATTRIBUTES" envSeparator:"," envKeyValSeparator:"="`
}
