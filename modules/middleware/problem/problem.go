// Package problem writes RFC 7807 problem documents for failures raised by
// HTTP middleware (auth, rate limiting, panics).
package problem

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

const ContentType = "application/problem+json"

// Problem is an RFC 7807 Problem Details document with optional extensions.
type Problem struct {
	Type     *string `json:"type,omitempty"`
	Title    string  `json:"title"`
	Status   int     `json:"status"`
	Detail   *string `json:"detail,omitempty"`
	Instance *string `json:"instance,omitempty"`
	Code     *string `json:"code,omitempty"`
	TraceID  *string `json:"traceId,omitempty"`

	// Extensions holds additional non-standard members.
	Extensions map[string]any `json:"-"`
}

type Option func(*Problem)

func New(opts ...Option) *Problem {
	p := &Problem{
		Status: http.StatusInternalServerError,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.Type == nil {
		p.Type = strPtr("about:blank")
	}
	if p.Title == "" {
		if t := http.StatusText(p.Status); t != "" {
			p.Title = t
		} else {
			p.Title = "Unknown Error"
		}
	}
	return p
}

// Write encodes p. A nil problem is written as a generic 500.
func Write(w http.ResponseWriter, p *Problem) {
	if p == nil {
		p = Internal("server error")
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteRequest is Write with the request path as instance and the active
// trace id, when there is one.
func WriteRequest(w http.ResponseWriter, r *http.Request, p *Problem) {
	if p == nil {
		p = Internal("server error")
	}
	if p.Instance == nil {
		p.Instance = strPtr(r.URL.Path)
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() && p.TraceID == nil {
		p.TraceID = strPtr(sc.TraceID().String())
	}
	Write(w, p)
}

func WithStatus(status int) Option {
	return func(p *Problem) { p.Status = status }
}

func WithTitle(title string) Option {
	return func(p *Problem) { p.Title = title }
}

func WithDetail(detail string) Option {
	return func(p *Problem) { p.Detail = strPtr(detail) }
}

func WithType(typ string) Option {
	return func(p *Problem) { p.Type = strPtr(typ) }
}

func WithCode(code string) Option {
	return func(p *Problem) { p.Code = strPtr(code) }
}

func WithExtension(key string, value any) Option {
	return func(p *Problem) {
		if p.Extensions == nil {
			p.Extensions = map[string]any{}
		}
		p.Extensions[key] = value
	}
}

func Unauthorized(detail string, opts ...Option) *Problem {
	return withBase(http.StatusUnauthorized, detail, opts)
}

func TooManyRequests(detail string, opts ...Option) *Problem {
	return withBase(http.StatusTooManyRequests, detail, opts)
}

func Internal(detail string, opts ...Option) *Problem {
	return withBase(http.StatusInternalServerError, detail, opts)
}

func withBase(status int, detail string, opts []Option) *Problem {
	base := []Option{
		WithTitle(http.StatusText(status)),
		WithStatus(status),
		WithDetail(detail),
	}
	return New(append(base, opts...)...)
}

func strPtr(s string) *string { return &s }

// MarshalJSON merges Extensions into the document. Standard members win on
// name clashes.
func (p Problem) MarshalJSON() ([]byte, error) {
	// alias drops the method set so json.Marshal does not recurse.
	type alias Problem
	base, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extensions) == 0 {
		return base, nil
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range p.Extensions {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return json.Marshal(m)
}
