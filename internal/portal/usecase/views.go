package usecase

import (
	"time"

	lmsmodel "lms-portal/internal/lms/domain/model"
	sessionmodel "lms-portal/internal/session/domain/model"
)

// DashboardView is the landing page of a signed-in client.
type DashboardView struct {
	Greeting   string             `json:"greeting"`
	Tagline    string             `json:"tagline"`
	Section    string             `json:"section"`
	EmptyState string             `json:"emptyState,omitempty"`
	User       *sessionmodel.User `json:"user,omitempty"`
	IsAdmin    bool               `json:"isAdmin"`
	Courses    []lmsmodel.Course  `json:"courses"`
	Error      string             `json:"error,omitempty"`
}

// CoursesView is the searchable course catalogue.
type CoursesView struct {
	Query   string            `json:"query"`
	Courses []lmsmodel.Course `json:"courses"`
	Total   int               `json:"total"`
	Error   string            `json:"error,omitempty"`
}

// CourseDetailView is one course with its modules. Admins manage it, students
// enroll in it.
type CourseDetailView struct {
	Course    lmsmodel.Course `json:"course"`
	IsAdmin   bool            `json:"isAdmin"`
	CanManage bool            `json:"canManage"`
	CanEnroll bool            `json:"canEnroll"`
	Lessons   int             `json:"lessons"`
}

// LessonView is a lesson ready to render.
type LessonView struct {
	Lesson lmsmodel.Lesson `json:"lesson"`
	IsText bool            `json:"isText"`
}

// EnrollView acknowledges an enrollment.
type EnrollView struct {
	CourseID   uint64 `json:"courseId"`
	IsEnrolled bool   `json:"isEnrolled"`
	Message    string `json:"message"`
}

// SessionView describes the current client session.
type SessionView struct {
	User           *sessionmodel.User `json:"user,omitempty"`
	IsAdmin        bool               `json:"isAdmin"`
	Authenticated  bool               `json:"authenticated"`
	TokenUserID    uint64             `json:"tokenUserId,omitempty"`
	TokenRole      string             `json:"tokenRole,omitempty"`
	TokenExpiresAt *time.Time         `json:"tokenExpiresAt,omitempty"`
	TokenExpired   bool               `json:"tokenExpired"`
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// CreateCourseInput is the course creation form.
type CreateCourseInput struct {
	Title       string `json:"title" form:"title"`
	Code        string `json:"code" form:"code"`
	Description string `json:"description" form:"description"`
}

// AddModuleInput is the add-module form.
type AddModuleInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// AddLessonInput is the add-lesson form.
type AddLessonInput struct {
	Title       string `json:"title" form:"title"`
	ContentType string `json:"contentType" form:"contentType"`
	ContentURL  string `json:"contentURL" form:"contentURL"`
	TextContent string `json:"textContent" form:"textContent"`
}
