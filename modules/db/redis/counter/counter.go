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

// Package counter stores rate limit counters in Redis so that every API
// instance sees the same counts.
package counter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskboard/modules/ratelimit"

	"github.com/redis/rueidis"
)

var _ ratelimit.CounterStore = (*RedisCounter)(nil)

// KEYS[1] = counter key, ARGV[1] = ttl in milliseconds.
// The ttl is only set when INCR creates the key.
const incrWithTTL = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`

var luaIncrWithTTL = rueidis.NewLuaScript(incrWithTTL)

type RedisCounter struct {
	client rueidis.Client
	prefix string
}

// NewRedisCounter wraps client as a ratelimit.CounterStore. A non-empty
// prefix is joined to keys with ":".
func NewRedisCounter(client rueidis.Client, prefix string) *RedisCounter {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisCounter{client: client, prefix: prefix}
}

func (r *RedisCounter) key(k string) string {
	return r.prefix + k
}

func (r *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	s, err := r.client.Do(ctx, r.client.B().Get().Key(r.key(key)).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis counter: get: %w", err)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis counter: parse %q: %w", s, err)
	}
	return n, nil
}

func (r *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ms := max(ttl.Milliseconds(), 1)
	n, err := luaIncrWithTTL.Exec(ctx, r.client, []string{r.key(key)}, []string{strconv.FormatInt(ms, 10)}).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("redis counter: incr: %w", err)
	}
	return n, nil
}
