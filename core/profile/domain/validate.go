package domain

import (
	"strings"

	"github.com/oapi-codegen/nullable"
)

// UpdateProfileParams is a partial update request. Each field is either
// unspecified (leave unchanged), explicitly null, or a value.
type UpdateProfileParams struct {
	Name nullable.Nullable[string]
	// Profile is nil when the request omitted "profile" or sent null.
	Profile *ProfilePatch
}

// ProfilePatch holds the recognized profile sub-fields of a request.
// Unrecognized keys never reach it.
type ProfilePatch struct {
	Bio      nullable.Nullable[string]
	Phone    nullable.Nullable[string]
	Location nullable.Nullable[string]
}

// ProfileOverlay is a validated, trimmed patch: nil means keep the stored value.
type ProfileOverlay struct {
	Bio      *string
	Phone    *string
	Location *string
}

func (o ProfileOverlay) IsEmpty() bool {
	return o.Bio == nil && o.Phone == nil && o.Location == nil
}

// profileChange is the validated form of UpdateProfileParams.
type profileChange struct {
	name    *string
	overlay ProfileOverlay
}

func (c profileChange) isEmpty() bool {
	return c.name == nil && c.overlay.IsEmpty()
}

// validate checks every field and reports all failures together.
func (p *UpdateProfileParams) validate() (profileChange, error) {
	var (
		change profileChange
		verr   ValidationError
	)

	if p.Name.IsSpecified() {
		if p.Name.IsNull() {
			verr.Add("name", "Name cannot be empty")
		} else if name := strings.TrimSpace(p.Name.MustGet()); name == "" {
			verr.Add("name", "Name cannot be empty")
		} else {
			change.name = &name
		}
	}

	if p.Profile != nil {
		change.overlay.Bio = trimmedSubField(p.Profile.Bio, "profile.bio", "Bio", &verr)
		change.overlay.Phone = trimmedSubField(p.Profile.Phone, "profile.phone", "Phone", &verr)
		change.overlay.Location = trimmedSubField(p.Profile.Location, "profile.location", "Location", &verr)
	}

	if err := verr.orNil(); err != nil {
		return profileChange{}, err
	}
	return change, nil
}

// trimmedSubField returns nil for an unspecified field. Empty strings are
// allowed; null is not.
func trimmedSubField(v nullable.Nullable[string], path, label string, verr *ValidationError) *string {
	if !v.IsSpecified() {
		return nil
	}
	if v.IsNull() {
		verr.Add(path, label+" must be a string")
		return nil
	}
	s := strings.TrimSpace(v.MustGet())
	return &s
}
