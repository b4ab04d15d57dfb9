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
	"context"
	"io/fs"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// ValidationErrorHandler writes the response for a request that failed
// OpenAPI validation. statusCode is the status suggested by the validator.
type ValidationErrorHandler func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int)

// SpecLoadErrorHandler handles errors that occur when loading the OpenAPI document.
type SpecLoadErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type specCacheKey struct {
	fsys fs.FS
	path string
}

type specCacheEntry struct {
	doc *openapi3.T
	err error
}

var (
	specCacheMu sync.Mutex
	specCache   = make(map[specCacheKey]*specCacheEntry)
)

// loadSpec parses and validates the document once per (fs, path).
func loadSpec(fsys fs.FS, specPath string) (*openapi3.T, error) {
	key := specCacheKey{fsys: fsys, path: specPath}

	specCacheMu.Lock()
	defer specCacheMu.Unlock()

	if entry, ok := specCache[key]; ok {
		return entry.doc, entry.err
	}

	doc, err := parseSpec(fsys, specPath)
	specCache[key] = &specCacheEntry{doc: doc, err: err}
	return doc, err
}

func parseSpec(fsys fs.FS, specPath string) (*openapi3.T, error) {
	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	return doc, nil
}

// OpenAPIValidation validates requests against the OpenAPI document at
// specPath in specFS. All violations are collected before errorHandler is
// called. If the document cannot be loaded every request goes to
// loadErrorHandler.
func OpenAPIValidation(
	specFS fs.FS,
	specPath string,
	errorHandler ValidationErrorHandler,
	loadErrorHandler SpecLoadErrorHandler,
) func(http.Handler) http.Handler {
	spec, err := loadSpec(specFS, specPath)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				loadErrorHandler(w, r, err)
			})
		}
	}

	opts := &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			errorHandler(ctx, err, w, r, status)
		},
	}

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, opts)
}
