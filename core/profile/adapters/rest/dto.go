package http

import (
	"strconv"
	"time"

	"taskboard/core/profile/domain"

	"github.com/oapi-codegen/nullable"
)

type (
	// UpdateProfileRequest is the PUT /api/profile body. Keys inside
	// "profile" other than bio, phone and location are dropped on decode.
	UpdateProfileRequest struct {
		Name    nullable.Nullable[string]              `json:"name,omitempty"`
		Profile nullable.Nullable[ProfilePatchRequest] `json:"profile,omitempty"`
	}

	ProfilePatchRequest struct {
		Bio      nullable.Nullable[string] `json:"bio,omitempty"`
		Phone    nullable.Nullable[string] `json:"phone,omitempty"`
		Location nullable.Nullable[string] `json:"location,omitempty"`
	}

	// UserResponse has no password member at all.
	UserResponse struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Email     string          `json:"email"`
		Profile   ProfileResponse `json:"profile"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	ProfileResponse struct {
		Bio      string `json:"bio"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
	}

	UpdateProfileResponse struct {
		Message string       `json:"message"`
		User    UserResponse `json:"user"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}

	ValidationErrorsResponse struct {
		Errors []FieldErrorResponse `json:"errors"`
	}

	FieldErrorResponse struct {
		Type     string `json:"type"`
		Msg      string `json:"msg"`
		Path     string `json:"path"`
		Location string `json:"location"`
	}
)

func (req UpdateProfileRequest) toParams() domain.UpdateProfileParams {
	params := domain.UpdateProfileParams{Name: req.Name}
	// null and absent both leave the profile untouched
	if req.Profile.IsSpecified() && !req.Profile.IsNull() {
		p := req.Profile.MustGet()
		params.Profile = &domain.ProfilePatch{
			Bio:      p.Bio,
			Phone:    p.Phone,
			Location: p.Location,
		}
	}
	return params
}

func toUserResponse(u *domain.SanitizedUser) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Profile: ProfileResponse{
			Bio:      u.Profile.Bio,
			Phone:    u.Profile.Phone,
			Location: u.Profile.Location,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// userVersion versions a record by its last update for ETag purposes.
type userVersion struct {
	u *domain.SanitizedUser
}

func (v userVersion) V() string {
	return strconv.FormatInt(v.u.UpdatedAt.UnixNano(), 36)
}
