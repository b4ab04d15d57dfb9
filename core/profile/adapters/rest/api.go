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

package http

import (
	"context"

	"taskboard/core/profile/domain"

	"github.com/gofrs/uuid/v5"
)

// ProfileApp is the domain surface the handlers need.
type ProfileApp interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.SanitizedUser, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params domain.UpdateProfileParams) (*domain.SanitizedUser, error)
}

var _ ProfileApp = (*domain.Application)(nil)

// ProfileAPI implements the HTTP handlers for profile operations.
// It acts as the REST adapter in the hexagonal architecture, translating
// HTTP requests into domain operations.
type ProfileAPI struct {
	app ProfileApp
}

func NewProfileAPI(app ProfileApp) *ProfileAPI {
	return &ProfileAPI{app: app}
}
