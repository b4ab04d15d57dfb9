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
	"log/slog"
	"net/http"

	"taskboard/modules/api/serde"
	"taskboard/modules/middleware"
	"taskboard/modules/oapi"
)

// ProfileValidationMiddleware validates requests against the embedded
// Profile API document.
func ProfileValidationMiddleware() func(http.Handler) http.Handler {
	return middleware.OpenAPIValidation(
		oapi.FS,
		oapi.ProfileSpecPath,
		OpenAPIErrorHandler,
		func(w http.ResponseWriter, r *http.Request, err error) {
			slog.ErrorContext(r.Context(), "failed to load openapi document", slog.Any("error", err))
			writeServerError(w)
		},
	)
}

// OpenAPIErrorHandler renders request validation failures in the same
// errors body the handlers use.
func OpenAPIErrorHandler(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int) {
	if statusCode != http.StatusBadRequest {
		// route or method mismatches are not field errors
		serde.WriteJSON(w, statusCode, MessageResponse{Message: http.StatusText(statusCode)})
		return
	}

	slog.DebugContext(ctx, "request rejected by openapi validation", slog.Any("error", err))
	violations := middleware.ExtractViolations(err)
	fields := make([]FieldErrorResponse, 0, len(violations))
	for _, v := range violations {
		path := v.Path
		reason := v.Reason
		switch {
		case path == "" && reason == "":
			reason = msgInvalidBody
		case path == "name" && (v.Rule == "nullable" || v.Rule == "pattern"):
			// null and blank names read the same as in the domain
			reason = msgNameEmpty
		}
		fields = append(fields, fieldError(path, reason))
	}
	if len(fields) == 0 {
		fields = append(fields, fieldError("", msgInvalidBody))
	}
	writeValidationErrors(w, fields)
}
