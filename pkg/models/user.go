package models

// User is a platform member as listed on the users page.
type User struct {
	UserID         ID     `json:"userId"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	FirstName      string `json:"firstName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	TrustScore     int    `json:"trustScore"`
}

// DisplayName returns the first name when set, else the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// CurrentUser is the signed-in administrator.
type CurrentUser struct {
	ID       ID     `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// LoginRequest is the body of the authentication call.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
	RememberMe      bool   `json:"rememberMe"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *CurrentUser `json:"user,omitempty"`
}

// Point source types understood by the gamification service.
const (
	PointSourceAdmin = "ADMIN"
)

// PointGrant adds (or removes, when negative) points for a user.
type PointGrant struct {
	UserID      ID     `json:"userId"`
	Points      int    `json:"points"`
	Reason      string `json:"reason"`
	SourceType  string `json:"sourceType,omitempty"`
	ReferenceID string `json:"referenceId"`
}

// Notification types
const (
	NotificationTypeSystem = "SYSTEM"
)

// Notification is a message pushed to a single user.
type Notification struct {
	UserID ID     `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Type   string `json:"type,omitempty"`
}
