package models

// Session is the admin's authentication state.
type Session struct {
	AccessToken  string       `json:"-"`
	RefreshToken string       `json:"-"`
	CurrentUser  *CurrentUser `json:"currentUser,omitempty"`
}

// Authenticated reports whether the session holds an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
