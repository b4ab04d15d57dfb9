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

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const MAX_TCP_PORT = 1<<16 - 1 // A TCP header uses a 16-bit field for port numbers

const defaultShutdownTimeout = 10 * time.Second

type (
	Server struct {
		server  *http.Server
		mux     *http.ServeMux
		handler http.Handler
		host    string
		port    uint16

		shutdownTimeout time.Duration

		// global middleware chain applied around the mux
		middlewares []func(http.Handler) http.Handler

		// registrable services that mount routes and provide their own middlewares
		services []RegistrableService
	}

	ServerOptions func(*Server)
)

func WithWriteTimeout(t time.Duration) ServerOptions {
	return func(s *Server) {
		if t != 0 {
			s.server.WriteTimeout = t
		} else {
			s.server.WriteTimeout = 10 * time.Second
		}
	}
}

func WithReadTimeout(t time.Duration) ServerOptions {
	return func(s *Server) {
		if t != 0 {
			s.server.ReadTimeout = t
		} else {
			s.server.ReadTimeout = 10 * time.Second
		}
	}
}

func WithShutdownTimeout(t time.Duration) ServerOptions {
	return func(s *Server) {
		if t > 0 {
			s.shutdownTimeout = t
		}
	}
}

// WithServices registers a collection of self-contained, registrable services.
func WithServices(svcs ...RegistrableService) ServerOptions {
	return func(s *Server) {
		s.services = append(s.services, svcs...)
	}
}

// WithGlobalMiddlewares registers global middlewares wrapping the entire server mux.
// The first middleware given is the outermost.
func WithGlobalMiddlewares(mw ...func(http.Handler) http.Handler) ServerOptions {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// Example usage:
//
//	server, _ := New("0.0.0.0", 5000, WithWriteTimeout(10*time.Second))
func New(host string, port int, opts ...ServerOptions) (*Server, error) {
	if len(host) == 0 {
		slog.Warn("empty host, binding to all interfaces")
		host = "0.0.0.0"
	}
	if port <= 0 || port > MAX_TCP_PORT {
		return nil, fmt.Errorf("server: bad port %d", port)
	}
	s := &Server{
		host:            host,
		port:            uint16(port),
		shutdownTimeout: defaultShutdownTimeout,
		mux:             http.NewServeMux(),
	}
	s.server = &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Service middlewares run inside the global ones.
	for _, svc := range s.services {
		svc.Register(s.mux)
		s.middlewares = append(s.middlewares, svc.Middlewares()...)
		slog.Info("registered service", slog.String("type", fmt.Sprintf("%T", svc)))
	}

	handler := http.Handler(s.mux)
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		handler = s.middlewares[i](handler)
	}
	s.handler = handler
	s.server.Handler = handler

	return s, nil
}

// Handler returns the composed middleware chain and mux.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled or the listener fails, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "started server", slog.String("host", s.host), slog.Any("port", s.port))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.ErrorContext(ctx, "server error", slog.Any("error", err))
		return err
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down...")
	dCtx, dCancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer dCancel()
	return s.server.Shutdown(dCtx)
}
