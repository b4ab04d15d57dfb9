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

// GetProfile returns the caller's profile. Responses carry an ETag, and a
// matching If-None-Match is answered with 304.
func (p *ProfileAPI) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeServerError(w)
		return
	}

	user, err := p.app.GetProfile(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	v := userVersion{u: user}
	w.Header().Set("ETag", etag.Header(v))
	w.Header().Set("Cache-Control", "private, no-cache")
	if etag.NoneMatch(r.Header.Get("If-None-Match"), v) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	serde.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
