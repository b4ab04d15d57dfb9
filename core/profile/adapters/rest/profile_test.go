package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/core/profile/adapters/persistence/memory"
	"taskboard/core/profile/domain"
	"taskboard/modules/auth"
	"taskboard/modules/keymutex"

	"github.com/gofrs/uuid/v5"
)

var (
	aliceID = uuid.Must(uuid.FromString("7a0c3c42-2b8e-4f7a-9b52-0f4f3a1c9d10"))
	ghostID = uuid.Must(uuid.FromString("00000000-0000-4000-8000-000000000001"))
)

func seedUser() domain.User {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.User{
		ID:           aliceID,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Profile:      domain.ProfileDetails{Bio: "hi", Phone: "555-0100", Location: "Lisbon"},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func newAPI(opts ...domain.Option) (*ProfileAPI, *memory.Store) {
	store := memory.New(seedUser())
	app := domain.NewApp(store, store, keymutex.New(), opts...)
	return NewProfileAPI(app), store
}

func authed(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: id}))
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestGetProfileOmitsPassword(t *testing.T) {
	api, _ := newAPI()

	rec := httptest.NewRecorder()
	api.GetProfile(rec, authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil), aliceID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("body leaks password hash: %s", rec.Body.String())
	}
	body := decodeMap(t, rec)
	for _, k := range []string{"password", "passwordHash", "PasswordHash"} {
		if _, ok := body[k]; ok {
			t.Errorf("body has %q", k)
		}
	}
	if body["id"] != aliceID.String() || body["email"] != "alice@example.com" {
		t.Errorf("unexpected body: %v", body)
	}
	profile, _ := body["profile"].(map[string]any)
	if profile["location"] != "Lisbon" {
		t.Errorf("profile = %v", profile)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestGetProfileNotModified(t *testing.T) {
	api, _ := newAPI()

	first := httptest.NewRecorder()
	api.GetProfile(first, authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil), aliceID))
	tag := first.Header().Get("ETag")

	req := authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil), aliceID)
	req.Header.Set("If-None-Match", tag)
	rec := httptest.NewRecorder()
	api.GetProfile(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 carried a body: %s", rec.Body.String())
	}
}

func TestGetProfileNotFound(t *testing.T) {
	tests := []struct {
		name       string
		policy     domain.NotFoundPolicy
		wantStatus int
		wantMsg    string
	}{
		{"concealed", domain.ConcealNotFound, http.StatusInternalServerError, "Server error"},
		{"revealed", domain.RevealNotFound, http.StatusNotFound, "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := newAPI(domain.WithNotFoundPolicy(tt.policy))

			rec := httptest.NewRecorder()
			api.GetProfile(rec, authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil), ghostID))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeMap(t, rec)["message"]; got != tt.wantMsg {
				t.Errorf("message = %v, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestGetProfileWithoutIdentity(t *testing.T) {
	api, _ := newAPI()

	rec := httptest.NewRecorder()
	api.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestUpdateProfileMergesSubFields(t *testing.T) {
	api, store := newAPI()

	body := `{"profile":{"bio":"  new bio  ","unknown":"x"},"extra":1}`
	rec := httptest.NewRecorder()
	api.UpdateProfile(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(body)), aliceID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp UpdateProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Profile updated successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	want := ProfileResponse{Bio: "new bio", Phone: "555-0100", Location: "Lisbon"}
	if resp.User.Profile != want {
		t.Errorf("profile = %+v, want %+v", resp.User.Profile, want)
	}
	if resp.User.Name != "Alice" {
		t.Errorf("name = %q, want unchanged", resp.User.Name)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("update response leaks password hash")
	}
	if store.Writes() != 1 {
		t.Errorf("writes = %d, want 1", store.Writes())
	}
}

func TestUpdateProfileEmptyBody(t *testing.T) {
	api, store := newAPI()

	rec := httptest.NewRecorder()
	api.UpdateProfile(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", nil), aliceID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.Writes() != 0 {
		t.Errorf("writes = %d, want 0", store.Writes())
	}
}

func TestUpdateProfileReportsAllErrors(t *testing.T) {
	api, store := newAPI()

	body := `{"name":"   ","profile":{"bio":null,"phone":null}}`
	rec := httptest.NewRecorder()
	api.UpdateProfile(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(body)), aliceID))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp ValidationErrorsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, e := range resp.Errors {
		if e.Type != "field" || e.Location != "body" {
			t.Errorf("unexpected error shape: %+v", e)
		}
		got[e.Path] = e.Msg
	}
	want := map[string]string{
		"name":          "Name cannot be empty",
		"profile.bio":   "Bio must be a string",
		"profile.phone": "Phone must be a string",
	}
	if len(got) != len(want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
	for path, msg := range want {
		if got[path] != msg {
			t.Errorf("errors[%s] = %q, want %q", path, got[path], msg)
		}
	}
	if store.Writes() != 0 {
		t.Errorf("writes = %d, want 0", store.Writes())
	}
}

func TestUpdateProfileBadBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantPath string
		wantMsg  string
	}{
		{"malformed", `{"name":`, "", "Invalid request body"},
		{"name not a string", `{"name":5}`, "name", "Name must be a string"},
		{"profile not an object", `{"profile":"x"}`, "profile", "Profile must be an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := newAPI()

			rec := httptest.NewRecorder()
			api.UpdateProfile(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(tt.body)), aliceID))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var resp ValidationErrorsResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if len(resp.Errors) != 1 || resp.Errors[0].Path != tt.wantPath || resp.Errors[0].Msg != tt.wantMsg {
				t.Errorf("errors = %+v", resp.Errors)
			}
		})
	}
}

type failingApp struct{}

func (failingApp) GetProfile(context.Context, uuid.UUID) (*domain.SanitizedUser, error) {
	return nil, domain.ErrUnhandled
}

func (failingApp) UpdateProfile(context.Context, uuid.UUID, domain.UpdateProfileParams) (*domain.SanitizedUser, error) {
	return nil, domain.ErrUnhandled
}

func TestServerErrorIsOpaque(t *testing.T) {
	api := NewProfileAPI(failingApp{})

	rec := httptest.NewRecorder()
	api.UpdateProfile(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"name":"Bob"}`)), aliceID))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"Server error"}` {
		t.Errorf("body = %s", got)
	}
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestHealthEndpoints(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Readyz(stubChecker{})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("readyz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Readyz(stubChecker{err: context.DeadlineExceeded})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rec.Code)
	}
}
