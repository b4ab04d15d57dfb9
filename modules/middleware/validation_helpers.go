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
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// Violation is one field-level failure extracted from an OpenAPI validation error.
type Violation struct {
	// Path is the dotted location inside the body, e.g. "profile.bio".
	// Empty when the failure concerns the request as a whole.
	Path string
	// Reason is safe to return to the caller; it never echoes input.
	Reason string
	// Rule is the schema keyword that failed ("type", "nullable", "pattern"...).
	// Empty for failures outside the body schema.
	Rule string
}

// ExtractViolations flattens a validation error into per-field violations.
func ExtractViolations(err error) []Violation {
	var out []Violation

	if multi, ok := err.(openapi3.MultiError); ok {
		for _, item := range multi {
			out = append(out, ExtractViolations(item)...)
		}
		return out
	}

	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		if inner, ok := re.Err.(openapi3.MultiError); ok {
			for _, item := range inner {
				out = append(out, ExtractViolations(item)...)
			}
			return out
		}
		var se *openapi3.SchemaError
		if errors.As(re.Err, &se) {
			if re.Parameter != nil {
				return []Violation{{Path: re.Parameter.Name, Reason: schemaReason(re.Parameter.Name, se), Rule: se.SchemaField}}
			}
			return []Violation{violationFromSchema(se)}
		}
		if re.Parameter != nil {
			return []Violation{{Path: re.Parameter.Name, Reason: SafeReason(re.Reason)}}
		}
		return []Violation{{Path: "", Reason: "Invalid request body"}}
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return []Violation{violationFromSchema(se)}
	}

	return []Violation{{Path: "", Reason: "Invalid request"}}
}

func violationFromSchema(se *openapi3.SchemaError) Violation {
	path := strings.Join(se.JSONPointer(), ".")
	field := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		field = path[i+1:]
	}
	return Violation{Path: path, Reason: schemaReason(field, se), Rule: se.SchemaField}
}

// schemaReason renders type mismatches and nulls in non-nullable fields as
// "<Field> must be a string"; anything else goes through SafeReason.
func schemaReason(field string, se *openapi3.SchemaError) string {
	if (se.SchemaField == "type" || se.SchemaField == "nullable") && se.Schema != nil && se.Schema.Type != nil {
		if types := se.Schema.Type.Slice(); len(types) > 0 && field != "" {
			return capitalize(field) + " must be " + article(types[0]) + " " + types[0]
		}
	}
	return SafeReason(se.Reason)
}

func article(typ string) string {
	switch typ {
	case "object", "array", "integer":
		return "an"
	}
	return "a"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SafeReason reduces verbose reasons to avoid reflecting input data back to the client.
func SafeReason(reason string) string {
	if reason == "" {
		return "Invalid value"
	}
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "doesn't match schema"):
		return "Doesn't match schema"
	case strings.Contains(lower, "must be one of"):
		return reason
	case strings.Contains(lower, "property") && strings.Contains(lower, "missing"):
		return "Is required"
	}
	return "Invalid value"
}
