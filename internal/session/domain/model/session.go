package model

// Entry names under which a session is persisted inside a client scope.
const (
	TokenEntry = "token"
	UserEntry  = "user"
)

// Session is the (token, user) pair representing an authenticated client. It is
// also the shape of the backend's login response.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
