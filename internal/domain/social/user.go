package social

// UserID identifies a user. The backend contract is numeric for users.
type UserID int64

// User represents an ifconnect account as returned by the backend
type User struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"profileImageUrl,omitempty"`
	CoverURL  string `json:"coverImageUrl,omitempty"`
	CampusID  int64  `json:"campusId,omitempty"`
}

// HasCampus reports whether the user linked a campus to their profile.
// Regional feeds and event listings require it.
func (u *User) HasCampus() bool {
	return u.CampusID != 0
}

// DisplayName returns the username, or a placeholder derived from the ID
// when the record could not be resolved.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return PlaceholderName(u.ID)
}

// UserProfile is the aggregate returned by GET /users/{id}/profile
type UserProfile struct {
	User           User  `json:"user"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	PostCount      int64 `json:"postCount"`
}
