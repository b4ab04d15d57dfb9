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
	"net/http"

	"taskboard/modules/api/serde"
	"taskboard/modules/etag"
)

// UpdateProfile applies a partial update to the caller's profile.
func (p *ProfileAPI) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeServerError(w)
		return
	}

	var req UpdateProfileRequest
	if err := serde.DecodeJSONBody(w, r, &req); err != nil {
		writeValidationErrors(w, decodeErrorFields(err))
		return
	}

	user, err := p.app.UpdateProfile(r.Context(), id.UserID, req.toParams())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("ETag", etag.Header(userVersion{u: user}))
	serde.WriteJSON(w, http.StatusOK, UpdateProfileResponse{
		Message: msgProfileUpdated,
		User:    toUserResponse(user),
	})
}
