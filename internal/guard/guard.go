// Package guard decides whether a client may see a view, based only on its session state.
package guard

import "lms-portal/internal/session/domain/model"

// Entry points the guard redirects to.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision is the outcome of guarding a navigation.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToDashboard
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToDashboard:
		return "redirect_to_dashboard"
	default:
		return "unknown"
	}
}

// Target is the path a redirecting decision navigates to; empty for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectToLogin:
		return LoginPath
	case RedirectToDashboard:
		return DashboardPath
	default:
		return ""
	}
}

// State is the part of a client session the guard looks at.
type State struct {
	Authenticated bool
	User          *model.User
}

// IsAdmin is false whenever no user is known.
func (s State) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin()
}

// Decide guards a protected view.
//
//	not authenticated                 -> RedirectToLogin
//	requireAdmin and user is not admin -> RedirectToDashboard
//	otherwise                         -> Allow
func Decide(requireAdmin bool, s State) Decision {
	if !s.Authenticated {
		return RedirectToLogin
	}
	if requireAdmin && !s.IsAdmin() {
		return RedirectToDashboard
	}
	return Allow
}

// DecideGuest guards the login and registration views, which signed-in clients skip.
func DecideGuest(s State) Decision {
	if s.Authenticated {
		return RedirectToDashboard
	}
	return Allow
}
