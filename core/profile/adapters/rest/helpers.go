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
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"taskboard/core/profile/domain"
	"taskboard/modules/api/serde"
	"taskboard/modules/auth"
)

const (
	msgServerError    = "Server error"
	msgUserNotFound   = "User not found"
	msgProfileUpdated = "Profile updated successfully"
	msgInvalidBody    = "Invalid request body"
	msgNameEmpty      = "Name cannot be empty"
)

func writeServerError(w http.ResponseWriter) {
	serde.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: msgServerError})
}

func fieldError(path, msg string) FieldErrorResponse {
	return FieldErrorResponse{Type: "field", Msg: msg, Path: path, Location: "body"}
}

func writeValidationErrors(w http.ResponseWriter, fields []FieldErrorResponse) {
	serde.WriteJSON(w, http.StatusBadRequest, ValidationErrorsResponse{Errors: fields})
}

// writeDomainError maps the domain error taxonomy onto responses. Nothing
// from err itself reaches the client except validation messages.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]FieldErrorResponse, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, fieldError(f.Path, f.Message))
		}
		writeValidationErrors(w, fields)
	case errors.Is(err, domain.ErrUserNotFound):
		serde.WriteJSON(w, http.StatusNotFound, MessageResponse{Message: msgUserNotFound})
	default:
		writeServerError(w)
	}
}

// identity returns the caller injected by the auth middleware.
func identity(r *http.Request) (auth.Identity, bool) {
	id, err := auth.IdentityFrom(r.Context())
	return id, err == nil
}

// decodeErrorFields describes a body that could not be decoded in the same
// shape as a validation failure.
func decodeErrorFields(err error) []FieldErrorResponse {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		label := typeErr.Field
		if i := strings.LastIndex(label, "."); i >= 0 {
			label = label[i+1:]
		}
		return []FieldErrorResponse{fieldError(typeErr.Field, capitalize(label)+" must be "+jsonKind(typeErr.Field))}
	}
	return []FieldErrorResponse{fieldError("", msgInvalidBody)}
}

func jsonKind(field string) string {
	if field == "profile" {
		return "an object"
	}
	return "a string"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
