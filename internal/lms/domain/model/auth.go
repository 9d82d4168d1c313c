package model

import sessionmodel "lms-portal/internal/session/domain/model"

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of a register request.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the backend answer to a successful login: the session to store.
type LoginResult = sessionmodel.Session

// Message is the generic acknowledgement body, e.g. for enrollment.
type Message struct {
	Message string `json:"message"`
}
