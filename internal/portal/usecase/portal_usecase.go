package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lms-portal/internal/lms/client"
	lmsmodel "lms-portal/internal/lms/domain/model"
	"lms-portal/internal/session/adapter/security"
	sessionmodel "lms-portal/internal/session/domain/model"
	apperrors "lms-portal/internal/shared/errors"
	"lms-portal/internal/shared/logger"
	"lms-portal/internal/shared/utils"
)

// Session is the client session a portal operation runs against.
type Session interface {
	client.TokenSource
	SetSession(ctx context.Context, token string, user sessionmodel.User) error
	GetUser(ctx context.Context) (sessionmodel.User, bool)
	ClearSession(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	IsAdmin(ctx context.Context) bool
}

// TokenInspector reads claims out of a session token.
type TokenInspector interface {
	Inspect(token string) (*security.TokenClaims, error)
}

// PortalUsecaseInterface defines the pages of the portal.
type PortalUsecaseInterface interface {
	Login(ctx context.Context, sess Session, email, password string) (*sessionmodel.User, error)
	Register(ctx context.Context, in RegisterInput) error
	Logout(ctx context.Context, sess Session) error
	Dashboard(ctx context.Context, sess Session) (*DashboardView, error)
	Courses(ctx context.Context, sess Session, query string) (*CoursesView, error)
	CourseDetail(ctx context.Context, sess Session, id uint64) (*CourseDetailView, error)
	Enroll(ctx context.Context, sess Session, courseID uint64) (*EnrollView, error)
	CreateCourse(ctx context.Context, sess Session, in CreateCourseInput) (*lmsmodel.Course, error)
	DeleteCourse(ctx context.Context, sess Session, id uint64) error
	AddModule(ctx context.Context, sess Session, courseID uint64, in AddModuleInput) (*lmsmodel.Module, error)
	AddLesson(ctx context.Context, sess Session, moduleID uint64, in AddLessonInput) (*lmsmodel.Lesson, error)
	Lesson(ctx context.Context, sess Session, id uint64) (*LessonView, error)
	SessionInfo(ctx context.Context, sess Session) *SessionView
}

// PortalUsecase implements the portal pages on top of the LMS backend.
type PortalUsecase struct {
	api       client.Factory
	inspector TokenInspector
	log       logger.Logger
	now       func() time.Time
}

var _ PortalUsecaseInterface = (*PortalUsecase)(nil)

// NewPortalUsecase creates a new instance of PortalUsecase.
func NewPortalUsecase(api client.Factory, inspector TokenInspector, log logger.Logger) *PortalUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if inspector == nil {
		inspector = security.NewTokenInspector()
	}
	return &PortalUsecase{
		api:       api,
		inspector: inspector,
		log:       log.WithComponent("portal"),
		now:       time.Now,
	}
}

// Login exchanges credentials for a token and stores the session.
func (uc *PortalUsecase) Login(ctx context.Context, sess Session, email, password string) (*sessionmodel.User, error) {
	ctx = utils.WithOperation(ctx, "login")
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(MsgInvalidCredentials).WithCause(apperrors.ErrInvalidInput)
	}

	res, err := uc.api(nil).Login(ctx, email, password)
	if err != nil {
		uc.log.WithContext(ctx).WithError(err).Warn("Login failed")
		return nil, userError(MsgInvalidCredentials, err)
	}
	if err := sess.SetSession(ctx, res.Token, res.User); err != nil {
		uc.log.WithContext(ctx).WithError(err).Error("Failed to store session after login")
		return nil, userError(MsgInvalidCredentials, err)
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id": res.User.ID,
		"role":    res.User.Role.String(),
	}).Info("User signed in")
	user := res.User
	return &user, nil
}

// Register creates an account. Any role other than admin registers a student.
func (uc *PortalUsecase) Register(ctx context.Context, in RegisterInput) error {
	ctx = utils.WithOperation(ctx, "register")
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	invalid := apperrors.NewValidationErrors().
		Require("name", in.Name).
		Require("email", in.Email).
		Require("password", in.Password)
	if invalid.HasErrors() {
		return invalid.ToAppError(MsgRegistrationFailed)
	}

	role := sessionmodel.RoleStudent
	if r, err := sessionmodel.ParseRole(in.Role); err == nil {
		role = r
	}

	err := uc.api(nil).Register(ctx, lmsmodel.Registration{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     role.String(),
	})
	if err != nil {
		uc.log.WithContext(ctx).WithError(err).Warn("Registration failed")
		return userError(MsgRegistrationFailed, err)
	}
	return nil
}

// Logout clears the session.
func (uc *PortalUsecase) Logout(ctx context.Context, sess Session) error {
	ctx = utils.WithOperation(ctx, "logout")
	if err := sess.ClearSession(ctx); err != nil {
		uc.log.WithContext(ctx).WithError(err).Error("Failed to clear session")
		return err
	}
	return nil
}

// Dashboard greets the user and lists courses. A failed fetch still renders
// the page, with an empty list and an error line.
func (uc *PortalUsecase) Dashboard(ctx context.Context, sess Session) (*DashboardView, error) {
	ctx = utils.WithOperation(ctx, "dashboard")
	isAdmin := sess.IsAdmin(ctx)
	view := &DashboardView{
		Greeting: "Welcome back!",
		IsAdmin:  isAdmin,
		Courses:  []lmsmodel.Course{},
	}
	if user, ok := sess.GetUser(ctx); ok {
		view.User = &user
		view.Greeting = fmt.Sprintf("Welcome back, %s!", user.Name)
	}
	if isAdmin {
		view.Tagline, view.Section = adminTagline, adminSection
	} else {
		view.Tagline, view.Section = studentTagline, studentSection
	}

	courses, err := uc.api(sess).ListCourses(ctx)
	if err != nil {
		if err := uc.expireIfRejected(ctx, sess, err); err != nil {
			return nil, err
		}
		uc.log.WithContext(ctx).WithError(err).Error(MsgFetchCoursesFailed)
		view.Error = MsgFetchCoursesFailed
	} else if courses != nil {
		view.Courses = courses
	}

	if len(view.Courses) == 0 {
		if isAdmin {
			view.EmptyState = adminEmpty
		} else {
			view.EmptyState = studentEmpty
		}
	}
	return view, nil
}

// Courses lists the catalogue filtered by query.
func (uc *PortalUsecase) Courses(ctx context.Context, sess Session, query string) (*CoursesView, error) {
	ctx = utils.WithOperation(ctx, "courses")
	view := &CoursesView{Query: strings.TrimSpace(query), Courses: []lmsmodel.Course{}}

	courses, err := uc.api(sess).ListCourses(ctx)
	if err != nil {
		if err := uc.expireIfRejected(ctx, sess, err); err != nil {
			return nil, err
		}
		uc.log.WithContext(ctx).WithError(err).Error(MsgFetchCoursesFailed)
		view.Error = MsgFetchCoursesFailed
		return view, nil
	}

	for _, c := range courses {
		if c.Matches(view.Query) {
			view.Courses = append(view.Courses, c)
		}
	}
	view.Total = len(view.Courses)
	return view, nil
}

// CourseDetail loads a course with its modules and lessons.
func (uc *PortalUsecase) CourseDetail(ctx context.Context, sess Session, id uint64) (*CourseDetailView, error) {
	ctx = utils.WithOperation(ctx, "course_detail")
	course, err := uc.api(sess).GetCourse(ctx, id)
	if err != nil {
		return nil, uc.fail(ctx, sess, "Failed to fetch course", MsgCourseNotFound, err)
	}

	isAdmin := sess.IsAdmin(ctx)
	return &CourseDetailView{
		Course:    *course,
		IsAdmin:   isAdmin,
		CanManage: isAdmin,
		CanEnroll: !isAdmin && !course.IsEnrolled,
		Lessons:   course.LessonCount(),
	}, nil
}

// Enroll enrolls the user in a course. Enrolling twice is not an error.
func (uc *PortalUsecase) Enroll(ctx context.Context, sess Session, courseID uint64) (*EnrollView, error) {
	ctx = utils.WithOperation(ctx, "enroll")
	msg, err := uc.api(sess).Enroll(ctx, courseID)
	if err != nil {
		return nil, uc.fail(ctx, sess, MsgEnrollFailed, MsgEnrollFailed, err)
	}
	return &EnrollView{CourseID: courseID, IsEnrolled: true, Message: msg}, nil
}

// CreateCourse creates a course. Every field is required.
func (uc *PortalUsecase) CreateCourse(ctx context.Context, sess Session, in CreateCourseInput) (*lmsmodel.Course, error) {
	ctx = utils.WithOperation(ctx, "create_course")
	body := lmsmodel.CourseInput{
		Title:       strings.TrimSpace(in.Title),
		Code:        strings.TrimSpace(in.Code),
		Description: strings.TrimSpace(in.Description),
	}
	invalid := apperrors.NewValidationErrors().
		Require("title", body.Title).
		Require("code", body.Code).
		Require("description", body.Description)
	if invalid.HasErrors() {
		return nil, invalid.ToAppError(MsgCourseFieldsMissing)
	}

	course, err := uc.api(sess).CreateCourse(ctx, body)
	if err != nil {
		return nil, uc.fail(ctx, sess, "Failed to create course", MsgCreateCourseFailed, err)
	}
	return course, nil
}

func (uc *PortalUsecase) DeleteCourse(ctx context.Context, sess Session, id uint64) error {
	ctx = utils.WithOperation(ctx, "delete_course")
	if err := uc.api(sess).DeleteCourse(ctx, id); err != nil {
		return uc.fail(ctx, sess, MsgDeleteCourseFailed, MsgDeleteCourseFailed, err)
	}
	return nil
}

func (uc *PortalUsecase) AddModule(ctx context.Context, sess Session, courseID uint64, in AddModuleInput) (*lmsmodel.Module, error) {
	ctx = utils.WithOperation(ctx, "add_module")
	body := lmsmodel.ModuleInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	if invalid := apperrors.NewValidationErrors().Require("title", body.Title); invalid.HasErrors() {
		return nil, invalid.ToAppError(MsgAddModuleFailed)
	}

	module, err := uc.api(sess).AddModule(ctx, courseID, body)
	if err != nil {
		return nil, uc.fail(ctx, sess, MsgAddModuleFailed, MsgAddModuleFailed, err)
	}
	return module, nil
}

// AddLesson adds a lesson. Text lessons send their body inline, other kinds send a link.
func (uc *PortalUsecase) AddLesson(ctx context.Context, sess Session, moduleID uint64, in AddLessonInput) (*lmsmodel.Lesson, error) {
	ctx = utils.WithOperation(ctx, "add_lesson")
	invalid := apperrors.NewValidationErrors().Require("title", in.Title)
	ct, err := lmsmodel.ParseContentType(in.ContentType)
	if err != nil {
		invalid.Add("contentType", "must be text, video or pdf")
	}
	if invalid.HasErrors() {
		return nil, invalid.ToAppError(MsgAddLessonFailed)
	}

	body := lmsmodel.NewLessonInput(strings.TrimSpace(in.Title), ct, strings.TrimSpace(in.ContentURL), in.TextContent)
	lesson, err := uc.api(sess).AddLesson(ctx, moduleID, body)
	if err != nil {
		return nil, uc.fail(ctx, sess, MsgAddLessonFailed, MsgAddLessonFailed, err)
	}
	return lesson, nil
}

func (uc *PortalUsecase) Lesson(ctx context.Context, sess Session, id uint64) (*LessonView, error) {
	ctx = utils.WithOperation(ctx, "lesson")
	lesson, err := uc.api(sess).GetLesson(ctx, id)
	if err != nil {
		return nil, uc.fail(ctx, sess, MsgLoadLessonFailed, MsgLoadLessonFailed, err)
	}
	return &LessonView{Lesson: *lesson, IsText: lesson.ContentType.IsText()}, nil
}

// SessionInfo describes the session, including what the token claims about itself.
func (uc *PortalUsecase) SessionInfo(ctx context.Context, sess Session) *SessionView {
	ctx = utils.WithOperation(ctx, "session_info")
	view := &SessionView{
		Authenticated: sess.IsAuthenticated(ctx),
		IsAdmin:       sess.IsAdmin(ctx),
	}
	if user, ok := sess.GetUser(ctx); ok {
		view.User = &user
	}

	token, ok := sess.GetToken(ctx)
	if !ok {
		return view
	}
	claims, err := uc.inspector.Inspect(token)
	if err != nil {
		uc.log.WithContext(ctx).WithError(err).Debug("Session token is not a readable JWT")
		return view
	}
	view.TokenUserID = claims.UserID
	view.TokenRole = claims.Role
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		view.TokenExpiresAt = &exp
		view.TokenExpired = claims.Expired(uc.now())
	}
	return view
}

// fail logs a failed backend call and maps it to a user-facing error.
func (uc *PortalUsecase) fail(ctx context.Context, sess Session, logMsg, userMsg string, err error) error {
	if expired := uc.expireIfRejected(ctx, sess, err); expired != nil {
		return expired
	}
	uc.log.WithContext(ctx).WithError(err).Error(logMsg)
	return userError(userMsg, err)
}

// expireIfRejected clears the session when the backend no longer accepts its token.
func (uc *PortalUsecase) expireIfRejected(ctx context.Context, sess Session, err error) error {
	if !apperrors.IsAuthentication(err) {
		return nil
	}
	uc.log.WithContext(ctx).WithError(err).Warn("Backend rejected session token, clearing session")
	if clearErr := sess.ClearSession(ctx); clearErr != nil {
		uc.log.WithContext(ctx).WithError(clearErr).Error("Failed to clear rejected session")
	}
	return apperrors.NewAuthenticationError(MsgSessionExpired).WithCause(err)
}

// userError keeps the classification of err under a user-facing message.
func userError(message string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.NewAppError(appErr.Type, message, appErr.HTTPCode).
			WithCause(err).
			WithComponent("portal")
	}
	return apperrors.NewInternalError(message).WithCause(err).WithComponent("portal")
}
