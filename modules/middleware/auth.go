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

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"taskboard/modules/auth"
	"taskboard/modules/middleware/problem"
)

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" token
// with a 401 problem and stores the verified identity in the request context.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="taskboard"`)
				problem.WriteRequest(w, r, problem.Unauthorized("missing bearer token"))
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				detail := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					detail = "token has expired"
				}
				slog.DebugContext(r.Context(), "bearer token rejected", slog.Any("error", err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="taskboard", error="invalid_token"`)
				problem.WriteRequest(w, r, problem.Unauthorized(detail))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
