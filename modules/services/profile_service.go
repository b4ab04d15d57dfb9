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

package services

import (
	"net/http"

	profile_http "taskboard/core/profile/adapters/rest"
	"taskboard/modules/middleware"
	"taskboard/modules/server"
)

var _ server.RegistrableService = (*ProfileAPIService)(nil)

// ProfileAPIService encapsulates the registration logic for the Profile API.
type ProfileAPIService struct {
	api      *profile_http.ProfileAPI
	verifier middleware.TokenVerifier
	checkers []profile_http.HealthChecker
}

func NewProfileAPIService(api *profile_http.ProfileAPI, verifier middleware.TokenVerifier, checkers ...profile_http.HealthChecker) *ProfileAPIService {
	return &ProfileAPIService{api: api, verifier: verifier, checkers: checkers}
}

// Register mounts the profile routes. Authentication runs before request
// validation so unauthenticated callers never see field errors.
func (s *ProfileAPIService) Register(mux *http.ServeMux) {
	protected := chain(
		middleware.BearerAuth(s.verifier),
		profile_http.ProfileValidationMiddleware(),
	)

	mux.Handle("GET /api/profile", protected(http.HandlerFunc(s.api.GetProfile)))
	mux.Handle("PUT /api/profile", protected(http.HandlerFunc(s.api.UpdateProfile)))
	mux.HandleFunc("GET /healthz", profile_http.Healthz)
	mux.Handle("GET /readyz", profile_http.Readyz(s.checkers...))
}

// Middlewares returns nothing; the profile middlewares are per route.
func (s *ProfileAPIService) Middlewares() []func(http.Handler) http.Handler {
	return nil
}

// chain applies mws so that the first one is the outermost.
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
