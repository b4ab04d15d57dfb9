package taskclient

import (
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:5000/api"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Token   string        `env:"TOKEN"`
}

// LoadConfig reads TASK_API_* variables.
func LoadConfig() (Config, error) {
	return env.ParseAsWithOptions[Config](env.Options{Prefix: "TASK_API_"})
}

// NewFromConfig builds a client whose transport is traced with otelhttp.
func NewFromConfig(cfg Config, opts ...Option) *Client {
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	base := []Option{WithHTTPClient(hc)}
	if cfg.Token != "" {
		base = append(base, WithBearerToken(cfg.Token))
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}
