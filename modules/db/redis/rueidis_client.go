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

package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidislock"
	"github.com/redis/rueidis/rueidisotel"
)

// clientOption turns RedisConfig into rueidis.ClientOption.
//
// It:
//
//   - Parses redis:// / rediss:// URL
//   - Enforces RequireTLS
//   - Configures optional insecure skip verify
//   - Applies basic tuning flags
func clientOption(cfg RedisConfig) (rueidis.ClientOption, error) {
	if cfg.URL == "" {
		return rueidis.ClientOption{}, errors.New("rueidis: URL must not be empty")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return rueidis.ClientOption{}, fmt.Errorf("rueidis: parse url: %w", err)
	}

	if u.Scheme == "redis" {
		if cfg.RequireTLS {
			return rueidis.ClientOption{}, errors.New("rueidis: RequireTLS=true but URL uses redis:// (plaintext); use rediss://")
		}
		if cfg.SkipTLSVerify {
			slog.Warn("rueidis: redis:// URL disables TLS even though SkipTLSVerify is set",
				slog.String("host", u.Hostname()),
			)
		}
	}

	opt, err := rueidis.ParseURL(cfg.URL)
	if err != nil {
		return rueidis.ClientOption{}, err
	}

	opt.ClientName = cfg.ClientName
	opt.DisableRetry = cfg.DisableRetry
	if cfg.ConnWriteTimeout > 0 {
		opt.ConnWriteTimeout = cfg.ConnWriteTimeout
	}

	if cfg.SkipTLSVerify {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			tc := opt.TLSConfig.Clone()
			tc.InsecureSkipVerify = true //nolint:gosec
			opt.TLSConfig = tc
		}
	}

	return opt, nil
}

// NewRueidisClient creates a rueidis.Client, optionally wrapped with
// OpenTelemetry, and performs a PING with a small timeout to fail fast.
func NewRueidisClient(ctx context.Context, cfg RedisConfig) (rueidis.Client, error) {
	opt, err := clientOption(cfg)
	if err != nil {
		return nil, err
	}

	var cli rueidis.Client
	if cfg.EnableOtel {
		cli, err = rueidisotel.NewClient(opt)
	} else {
		cli, err = rueidis.NewClient(opt)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error during rueidis init", slog.Any("error", err))
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := cli.Do(pingCtx, cli.B().Ping().Build()).Error(); err != nil {
		cli.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "rueidis: connected",
		slog.String("mode", string(cli.Mode())),
		slog.String("client_name", cfg.ClientName),
	)

	return cli, nil
}

// NewLocker creates a rueidislock.Locker with its own connections.
// The locker must be closed by the caller.
func NewLocker(cfg RedisConfig) (rueidislock.Locker, error) {
	opt, err := clientOption(cfg)
	if err != nil {
		return nil, err
	}

	lockerOpt := rueidislock.LockerOption{
		ClientOption:   opt,
		KeyPrefix:      cfg.LockKeyPrefix,
		KeyValidity:    cfg.LockKeyValidity,
		KeyMajority:    cfg.LockKeyMajority,
		NoLoopTracking: cfg.LockNoLoopTracking,
	}
	if cfg.EnableOtel {
		lockerOpt.ClientBuilder = func(option rueidis.ClientOption) (rueidis.Client, error) {
			return rueidisotel.NewClient(option)
		}
	}

	locker, err := rueidislock.NewLocker(lockerOpt)
	if err != nil {
		return nil, fmt.Errorf("rueidislock: %w", err)
	}
	return locker, nil
}

// Pinger adapts a client to a readiness check.
type Pinger struct {
	Client rueidis.Client
}

func (p Pinger) HealthCheck(ctx context.Context) error {
	return p.Client.Do(ctx, p.Client.B().Ping().Build()).Error()
}
