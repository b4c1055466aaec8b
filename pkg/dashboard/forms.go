package dashboard

// LoginForm is the sign-in form
type LoginForm struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required,max=254"`
	Password        string `json:"password" validate:"required"`
}

// PointsForm grants or removes points
type PointsForm struct {
	Points int    `json:"points" validate:"ne=0"`
	Reason string `json:"reason" validate:"max=255"`
}

// NotificationForm is a free-form message to one user
type NotificationForm struct {
	Title string `json:"title" validate:"required,max=120"`
	Body  string `json:"body" validate:"required,max=1000"`
}

// NotificationTitle is the title of the message sent after a point grant
const NotificationTitle = "Message from the administrator"
