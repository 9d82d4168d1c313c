package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"lms-portal/internal/lms/client"
	lmsmodel "lms-portal/internal/lms/domain/model"
	"lms-portal/internal/portal/usecase"
	"lms-portal/internal/session"
	"lms-portal/internal/session/adapter/persistence/memory"
	sessionconfig "lms-portal/internal/session/config"
	sessionmodel "lms-portal/internal/session/domain/model"
	sessionusecase "lms-portal/internal/session/usecase"
	apperrors "lms-portal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	adminUser   = sessionmodel.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: sessionmodel.RoleAdmin}
	studentUser = sessionmodel.User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: sessionmodel.RoleStudent}
)

type PortalRouterTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockPortalUsecase
	sessions   *session.SessionModule
	storage    *memory.Storage
	middleware *PortalMiddleware
	cfg        *sessionconfig.Config
}

func (suite *PortalRouterTestSuite) SetupTest() {
	suite.cfg = &sessionconfig.Config{
		Backend:        sessionconfig.BackendMemory,
		TTL:            time.Hour,
		ScopePrefix:    "test:client:",
		CookieName:     "lms_client",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieHashKey:  strings.Repeat("k", 32),
		CookieTTL:      24 * time.Hour,
	}
	suite.storage = memory.NewStorage()
	suite.sessions = session.NewSessionModuleWithStorage(suite.cfg, suite.storage, nil)
	suite.middleware = NewPortalMiddleware(suite.sessions, suite.cfg, nil)
	suite.mockUC = &mockPortalUsecase{}

	suite.app = fiber.New()
	NewPortalHTTPHandler(suite.mockUC, nil).SetupPortalRoutes(suite.app, suite.middleware, RouteOptions{
		LoginLimiter: suite.middleware.LoginRateLimiter(3, time.Minute),
	})
}

func (suite *PortalRouterTestSuite) TearDownTest() {
	suite.mockUC.AssertExpectations(suite.T())
}

// signedIn returns the cookie of a client whose session holds user.
func (suite *PortalRouterTestSuite) signedIn(user *sessionmodel.User) *http.Cookie {
	clientID := uuid.NewString()
	encoded, err := suite.middleware.codec.Encode(suite.cfg.CookieName, clientID)
	require.NoError(suite.T(), err)

	if user != nil {
		store, err := suite.sessions.ForClient(clientID)
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), store.SetSession(context.Background(), "jwt", *user))
	}
	return &http.Cookie{Name: suite.cfg.CookieName, Value: encoded}
}

// withUnreadableUser returns the cookie of a client holding a token whose user
// record does not decode.
func (suite *PortalRouterTestSuite) withUnreadableUser(rawUser string) *http.Cookie {
	clientID := uuid.NewString()
	encoded, err := suite.middleware.codec.Encode(suite.cfg.CookieName, clientID)
	require.NoError(suite.T(), err)

	scope := sessionusecase.ScopeFor(suite.cfg.ScopePrefix, clientID)
	require.NoError(suite.T(), suite.storage.Put(context.Background(), scope, map[string]string{
		sessionmodel.TokenEntry: "jwt",
		sessionmodel.UserEntry:  rawUser,
	}))
	return &http.Cookie{Name: suite.cfg.CookieName, Value: encoded}
}

func (suite *PortalRouterTestSuite) do(req *http.Request, cookie *http.Cookie) *http.Response {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func clientCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (suite *PortalRouterTestSuite) TestGuard_RedirectsAnonymousToLogin() {
	resp := suite.do(httptest.NewRequest("GET", "/dashboard", nil), nil)

	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/login", resp.Header.Get("Location"))
	assert.NotNil(suite.T(), clientCookie(resp, "lms_client"), "new clients get an identity")
}

func (suite *PortalRouterTestSuite) TestGuard_StudentOnAdminPage() {
	resp := suite.do(httptest.NewRequest("GET", "/admin/create-course", nil), suite.signedIn(&studentUser))

	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/dashboard", resp.Header.Get("Location"))
}

func (suite *PortalRouterTestSuite) TestGuard_AdminOnAdminPage() {
	resp := suite.do(httptest.NewRequest("GET", "/admin/create-course", nil), suite.signedIn(&adminUser))

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Nil(suite.T(), clientCookie(resp, "lms_client"), "known clients keep their cookie")
}

func (suite *PortalRouterTestSuite) TestGuard_SignedInSkipsLogin() {
	for _, path := range []string{"/login", "/register"} {
		resp := suite.do(httptest.NewRequest("GET", path, nil), suite.signedIn(&studentUser))
		assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(suite.T(), "/dashboard", resp.Header.Get("Location"), path)
	}
}

func (suite *PortalRouterTestSuite) TestGuard_TamperedCookieIsAnonymous() {
	cookie := suite.signedIn(&adminUser)
	cookie.Value = cookie.Value[:len(cookie.Value)-2] + "xx"

	resp := suite.do(httptest.NewRequest("GET", "/dashboard", nil), cookie)
	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/login", resp.Header.Get("Location"))
}

func (suite *PortalRouterTestSuite) TestUnknownPathsGoToDashboard() {
	for _, path := range []string{"/", "/nowhere/at/all"} {
		resp := suite.do(httptest.NewRequest("GET", path, nil), nil)
		assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(suite.T(), "/dashboard", resp.Header.Get("Location"), path)
	}
}

func (suite *PortalRouterTestSuite) TestLogin_Success() {
	suite.mockUC.On("Login", mock.Anything, mock.Anything, "ada@example.com", "pw").Return(&adminUser, nil)

	resp := suite.do(formRequest("POST", "/login", url.Values{"email": {"ada@example.com"}, "password": {"pw"}}), nil)
	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/dashboard", resp.Header.Get("Location"))
}

func (suite *PortalRouterTestSuite) TestLogin_Failure() {
	suite.mockUC.On("Login", mock.Anything, mock.Anything, "ada@example.com", "bad").
		Return(nil, apperrors.NewValidationError(usecase.MsgInvalidCredentials))

	resp := suite.do(formRequest("POST", "/login", url.Values{"email": {"ada@example.com"}, "password": {"bad"}}), nil)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(suite.T(), usecase.MsgInvalidCredentials, decodeBody(suite.T(), resp)["error"])
}

func (suite *PortalRouterTestSuite) TestLogin_RateLimited() {
	suite.mockUC.On("Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError(usecase.MsgInvalidCredentials))

	var last *http.Response
	for i := 0; i < 4; i++ {
		last = suite.do(formRequest("POST", "/login", url.Values{"email": {"x@example.com"}, "password": {"pw"}}), nil)
	}
	assert.Equal(suite.T(), http.StatusTooManyRequests, last.StatusCode)
}

func (suite *PortalRouterTestSuite) TestRegister_RedirectsToLogin() {
	suite.mockUC.On("Register", mock.Anything, usecase.RegisterInput{
		Name: "Sam", Email: "sam@example.com", Password: "pw", Role: "student",
	}).Return(nil)

	resp := suite.do(formRequest("POST", "/register", url.Values{
		"name": {"Sam"}, "email": {"sam@example.com"}, "password": {"pw"}, "role": {"student"},
	}), nil)
	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/login", resp.Header.Get("Location"))
}

func (suite *PortalRouterTestSuite) TestLogout_RotatesClient() {
	cookie := suite.signedIn(&studentUser)
	suite.mockUC.On("Logout", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sess := args.Get(1).(usecase.Session)
		_ = sess.ClearSession(args.Get(0).(context.Context))
	}).Return(nil)

	resp := suite.do(httptest.NewRequest("POST", "/logout", nil), cookie)
	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/login", resp.Header.Get("Location"))

	rotated := clientCookie(resp, "lms_client")
	require.NotNil(suite.T(), rotated)
	assert.NotEqual(suite.T(), cookie.Value, rotated.Value)

	again := suite.do(httptest.NewRequest("GET", "/dashboard", nil), cookie)
	assert.Equal(suite.T(), "/login", again.Header.Get("Location"), "old identity is signed out")
}

func (suite *PortalRouterTestSuite) TestDashboard() {
	suite.mockUC.On("Dashboard", mock.Anything, mock.Anything).
		Return(&usecase.DashboardView{Greeting: "Welcome back, Sam!", Error: usecase.MsgFetchCoursesFailed}, nil)

	resp := suite.do(httptest.NewRequest("GET", "/dashboard", nil), suite.signedIn(&studentUser))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "Welcome back, Sam!", body["greeting"])
	assert.Equal(suite.T(), usecase.MsgFetchCoursesFailed, body["error"])
}

// catalogueAPI serves a fixed course list. Other calls are not expected.
type catalogueAPI struct {
	client.API
	courses []lmsmodel.Course
}

func (a catalogueAPI) ListCourses(context.Context) ([]lmsmodel.Course, error) {
	return a.courses, nil
}

func (suite *PortalRouterTestSuite) TestDashboard_UnreadableUserStillRenders() {
	api := catalogueAPI{courses: []lmsmodel.Course{{ID: 1, Title: "Intro to Go", Code: "GO101"}}}
	uc := usecase.NewPortalUsecase(func(client.TokenSource) client.API { return api }, nil, nil)

	app := fiber.New()
	NewPortalHTTPHandler(uc, nil).SetupPortalRoutes(app, suite.middleware, RouteOptions{})

	for _, raw := range []string{"{not json", `{"id":7,"role":"owner"}`} {
		req := httptest.NewRequest("GET", "/dashboard", nil)
		req.AddCookie(suite.withUnreadableUser(raw))
		resp, err := app.Test(req)
		require.NoError(suite.T(), err)

		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode, raw)
		body := decodeBody(suite.T(), resp)
		assert.Equal(suite.T(), "Welcome back!", body["greeting"], raw)
		assert.Equal(suite.T(), false, body["isAdmin"], raw)
		assert.NotContains(suite.T(), body, "user", raw)
		assert.Len(suite.T(), body["courses"], 1, raw)
	}
}

func (suite *PortalRouterTestSuite) TestExpiredBackendSessionRedirects() {
	suite.mockUC.On("Courses", mock.Anything, mock.Anything, "go").
		Return(nil, apperrors.NewAuthenticationError(usecase.MsgSessionExpired))

	resp := suite.do(httptest.NewRequest("GET", "/courses?q=go", nil), suite.signedIn(&studentUser))
	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/login", resp.Header.Get("Location"))
}

func (suite *PortalRouterTestSuite) TestCourseDetail() {
	suite.mockUC.On("CourseDetail", mock.Anything, mock.Anything, uint64(4)).
		Return(nil, apperrors.NewNotFoundError("course").WithCause(apperrors.ErrNotFound))

	resp := suite.do(httptest.NewRequest("GET", "/courses/4", nil), suite.signedIn(&studentUser))
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)

	resp = suite.do(httptest.NewRequest("GET", "/courses/abc", nil), suite.signedIn(&studentUser))
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
	assert.Equal(suite.T(), usecase.MsgCourseNotFound, decodeBody(suite.T(), resp)["error"])
}

func (suite *PortalRouterTestSuite) TestEnroll() {
	suite.mockUC.On("Enroll", mock.Anything, mock.Anything, uint64(3)).
		Return(&usecase.EnrollView{CourseID: 3, IsEnrolled: true, Message: "Enrolled successfully"}, nil)

	resp := suite.do(httptest.NewRequest("POST", "/courses/3/enroll", nil), suite.signedIn(&studentUser))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), true, decodeBody(suite.T(), resp)["isEnrolled"])
}

func (suite *PortalRouterTestSuite) TestCreateCourse_RedirectsToCourse() {
	suite.mockUC.On("CreateCourse", mock.Anything, mock.Anything, usecase.CreateCourseInput{
		Title: "Go", Code: "GO1", Description: "d",
	}).Return(&lmsmodel.Course{ID: 7}, nil)

	resp := suite.do(formRequest("POST", "/admin/create-course", url.Values{
		"title": {"Go"}, "code": {"GO1"}, "description": {"d"},
	}), suite.signedIn(&adminUser))
	assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode)
	assert.Equal(suite.T(), "/courses/7", resp.Header.Get("Location"))
}

func (suite *PortalRouterTestSuite) TestCreateCourse_ReportsMissingFields() {
	suite.mockUC.On("CreateCourse", mock.Anything, mock.Anything, usecase.CreateCourseInput{Title: "Go"}).
		Return(nil, apperrors.NewValidationErrors().
			Require("code", "").
			Require("description", "").
			ToAppError(usecase.MsgCourseFieldsMissing))

	resp := suite.do(formRequest("POST", "/admin/create-course", url.Values{"title": {"Go"}}), suite.signedIn(&adminUser))
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), usecase.MsgCourseFieldsMissing, body["error"])
	assert.Equal(suite.T(), []interface{}{
		map[string]interface{}{"field": "code", "message": "is required"},
		map[string]interface{}{"field": "description", "message": "is required"},
	}, body["invalid"])
}

func (suite *PortalRouterTestSuite) TestAdminWritesRequireAdmin() {
	student := suite.signedIn(&studentUser)

	for _, req := range []*http.Request{
		httptest.NewRequest("DELETE", "/admin/courses/1", nil),
		formRequest("POST", "/courses/1/modules", url.Values{"title": {"M"}}),
		formRequest("POST", "/modules/1/lessons", url.Values{"title": {"L"}}),
	} {
		resp := suite.do(req, student)
		assert.Equal(suite.T(), http.StatusSeeOther, resp.StatusCode, req.URL.Path)
		assert.Equal(suite.T(), "/dashboard", resp.Header.Get("Location"), req.URL.Path)
	}
	suite.mockUC.AssertNotCalled(suite.T(), "DeleteCourse")
}

func (suite *PortalRouterTestSuite) TestAdminWrites() {
	admin := suite.signedIn(&adminUser)
	suite.mockUC.On("DeleteCourse", mock.Anything, mock.Anything, uint64(1)).
		Return(apperrors.NewInfrastructureError(usecase.MsgDeleteCourseFailed))
	suite.mockUC.On("AddModule", mock.Anything, mock.Anything, uint64(1), usecase.AddModuleInput{Title: "M"}).
		Return(&lmsmodel.Module{ID: 5, Title: "M", CourseID: 1}, nil)
	suite.mockUC.On("AddLesson", mock.Anything, mock.Anything, uint64(5), usecase.AddLessonInput{Title: "L", ContentType: "text", TextContent: "hi"}).
		Return(&lmsmodel.Lesson{ID: 9, Title: "L", ContentType: lmsmodel.ContentText}, nil)

	resp := suite.do(httptest.NewRequest("DELETE", "/admin/courses/1", nil), admin)
	assert.Equal(suite.T(), http.StatusBadGateway, resp.StatusCode)
	assert.Equal(suite.T(), usecase.MsgDeleteCourseFailed, decodeBody(suite.T(), resp)["error"])

	resp = suite.do(formRequest("POST", "/courses/1/modules", url.Values{"title": {"M"}}), admin)
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	resp = suite.do(formRequest("POST", "/modules/5/lessons", url.Values{
		"title": {"L"}, "contentType": {"text"}, "textContent": {"hi"},
	}), admin)
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
}

func (suite *PortalRouterTestSuite) TestLessonAndSession() {
	student := suite.signedIn(&studentUser)
	suite.mockUC.On("Lesson", mock.Anything, mock.Anything, uint64(9)).
		Return(&usecase.LessonView{Lesson: lmsmodel.Lesson{ID: 9}, IsText: true}, nil)
	suite.mockUC.On("SessionInfo", mock.Anything, mock.Anything).
		Return(&usecase.SessionView{Authenticated: true, User: &studentUser})

	resp := suite.do(httptest.NewRequest("GET", "/lessons/9", nil), student)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp = suite.do(httptest.NewRequest("GET", "/session", nil), student)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), true, decodeBody(suite.T(), resp)["authenticated"])
}

func TestPortalRouterTestSuite(t *testing.T) {
	suite.Run(t, new(PortalRouterTestSuite))
}
