package types

// User is the current-user payload from GET /api/auth/me/.
type User struct {
	Id        string       `json:"id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name,omitempty"`
	LastName  string       `json:"last_name,omitempty"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

type UserProfile struct {
	Id         string `json:"id,omitempty"`
	AvatarUrl  string `json:"avatar_url,omitempty"`
	Bio        string `json:"bio,omitempty"`
	City       string `json:"city,omitempty"`
	CityName   string `json:"city_name,omitempty"`
	IsVerified bool   `json:"is_verified,omitempty"`
}

// Session is the locally persisted auth state. An empty AccessToken means
// logged out.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CurrentUser  *User  `json:"current_user,omitempty"`
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.AccessToken != ""
}
