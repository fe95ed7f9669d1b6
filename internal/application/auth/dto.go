package auth

import "github.com/ifconnect/client/internal/domain/social"

// LoginInput carries the credentials for Login
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput carries the fields for creating an account
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	CampusID int64  `json:"campusId,omitempty" validate:"omitempty,gt=0"`
}

// UpdateProfileInput carries the editable profile fields
type UpdateProfileInput struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	Bio      string `json:"bio,omitempty" validate:"max=280"`
}

// PhotoKind selects which profile image an upload replaces.
type PhotoKind string

const (
	PhotoAvatar PhotoKind = "avatar"
	PhotoCover  PhotoKind = "cover"
)

// loginResponse is the wire shape of a successful login. The backend returns
// the user record with the bearer token alongside it.
type loginResponse struct {
	social.User
	Token string `json:"token,omitempty"`
}
