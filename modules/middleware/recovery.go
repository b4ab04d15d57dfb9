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
	"log/slog"
	"net/http"
	"runtime/debug"

	"taskboard/modules/middleware/problem"
)

// PanicHandler writes the response for a recovered panic.
type PanicHandler func(w http.ResponseWriter, r *http.Request, recovered any)

// Recovery recovers from panics in next and calls handler. A nil handler
// writes a 500 problem document.
func Recovery(handler PanicHandler) func(http.Handler) http.Handler {
	if handler == nil {
		handler = DefaultPanicHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler is the documented way to abort a response.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "panic recovered",
					slog.Any("error", rec),
					slog.String("http.method", r.Method),
					slog.String("http.path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				handler(w, r, rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func DefaultPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	problem.WriteRequest(w, r, problem.Internal("server error"))
}
