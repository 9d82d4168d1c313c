package http

import (
	"errors"
	"strconv"

	"lms-portal/internal/guard"
	"lms-portal/internal/portal/usecase"
	apperrors "lms-portal/internal/shared/errors"
	"lms-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// PortalHTTPHandler serves the portal pages
type PortalHTTPHandler struct {
	usecase usecase.PortalUsecaseInterface
	log     logger.Logger
}

// NewPortalHTTPHandler creates a new portal HTTP handler
func NewPortalHTTPHandler(uc usecase.PortalUsecaseInterface, log logger.Logger) *PortalHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PortalHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("portal_http"),
	}
}

// RouteOptions tune route registration.
type RouteOptions struct {
	LoginLimiter fiber.Handler
}

// SetupPortalRoutes registers every portal page behind its guard.
func (h *PortalHTTPHandler) SetupPortalRoutes(router fiber.Router, m *PortalMiddleware, opts RouteOptions) {
	router.Use(m.ClientSession())

	loginPost := []fiber.Handler{m.GuestOnly()}
	if opts.LoginLimiter != nil {
		loginPost = append([]fiber.Handler{opts.LoginLimiter}, loginPost...)
	}
	router.Get(guard.LoginPath, m.GuestOnly(), h.LoginPage)
	router.Post(guard.LoginPath, append(loginPost, h.Login)...)
	router.Get("/register", m.GuestOnly(), h.RegisterPage)
	router.Post("/register", m.GuestOnly(), h.Register)

	router.Post("/logout", m.Protect(), h.Logout)
	router.Get(guard.DashboardPath, m.Protect(), h.Dashboard)
	router.Get("/session", m.Protect(), h.Session)
	router.Get("/courses", m.Protect(), h.Courses)
	router.Get("/courses/:id", m.Protect(), h.CourseDetail)
	router.Post("/courses/:id/enroll", m.Protect(), h.Enroll)
	router.Post("/courses/:id/modules", m.AdminOnly(), h.AddModule)
	router.Post("/modules/:id/lessons", m.AdminOnly(), h.AddLesson)
	router.Get("/lessons/:id", m.Protect(), h.Lesson)

	admin := router.Group("/admin", m.AdminOnly())
	admin.Get("/create-course", h.CreateCoursePage)
	admin.Post("/create-course", h.CreateCourse)
	admin.Delete("/courses/:id", h.DeleteCourse)

	router.Get("/", h.Home)
	router.All("*", h.Home)
}

// Home sends every unknown path to the dashboard, whose guard takes it from there.
func (h *PortalHTTPHandler) Home(c *fiber.Ctx) error {
	return c.Redirect(guard.DashboardPath, fiber.StatusSeeOther)
}

func (h *PortalHTTPHandler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":   "login",
		"fields": []string{"email", "password"},
	})
}

func (h *PortalHTTPHandler) RegisterPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":   "register",
		"fields": []string{"name", "email", "password", "role"},
		"roles":  []string{"student", "admin"},
	})
}

func (h *PortalHTTPHandler) CreateCoursePage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":   "create-course",
		"fields": []string{"title", "code", "description"},
	})
}

// Login handles the login form
func (h *PortalHTTPHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	if _, err := h.usecase.Login(c.UserContext(), sess, req.Email, req.Password); err != nil {
		return renderError(c, err)
	}
	return c.Redirect(guard.DashboardPath, fiber.StatusSeeOther)
}

// Register handles the registration form
func (h *PortalHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.usecase.Register(c.UserContext(), req); err != nil {
		return renderError(c, err)
	}
	return c.Redirect(guard.LoginPath, fiber.StatusSeeOther)
}

// Logout clears the session. The client lands on the login page even when
// storage could not be cleared, since its cookie has been rotated.
func (h *PortalHTTPHandler) Logout(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	if err := h.usecase.Logout(c.UserContext(), sess); err != nil {
		h.log.WithContext(c.UserContext()).WithError(err).Warn("Logout left stale session data")
	}
	return c.Redirect(guard.LoginPath, fiber.StatusSeeOther)
}

func (h *PortalHTTPHandler) Dashboard(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	view, err := h.usecase.Dashboard(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *PortalHTTPHandler) Session(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	return c.JSON(h.usecase.SessionInfo(c.UserContext(), sess))
}

func (h *PortalHTTPHandler) Courses(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	view, err := h.usecase.Courses(c.UserContext(), sess, c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *PortalHTTPHandler) CourseDetail(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": usecase.MsgCourseNotFound})
	}
	view, err := h.usecase.CourseDetail(c.UserContext(), sess, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *PortalHTTPHandler) Enroll(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}
	view, err := h.usecase.Enroll(c.UserContext(), sess, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// CreateCourse creates a course and opens it.
func (h *PortalHTTPHandler) CreateCourse(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	var req usecase.CreateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	course, err := h.usecase.CreateCourse(c.UserContext(), sess, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect("/courses/"+strconv.FormatUint(course.ID, 10), fiber.StatusSeeOther)
}

func (h *PortalHTTPHandler) DeleteCourse(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}
	if err := h.usecase.DeleteCourse(c.UserContext(), sess, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Course deleted"})
}

func (h *PortalHTTPHandler) AddModule(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}
	var req usecase.AddModuleInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	module, err := h.usecase.AddModule(c.UserContext(), sess, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(module)
}

func (h *PortalHTTPHandler) AddLesson(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}
	var req usecase.AddLessonInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	lesson, err := h.usecase.AddLesson(c.UserContext(), sess, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *PortalHTTPHandler) Lesson(c *fiber.Ctx) error {
	sess, ok := SessionFrom(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": usecase.MsgLoadLessonFailed})
	}
	view, err := h.usecase.Lesson(c.UserContext(), sess, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// respondError renders a failed page. A session the backend rejected sends the
// client back to the login page.
func respondError(c *fiber.Ctx, err error) error {
	if apperrors.IsAuthentication(err) {
		return c.Redirect(guard.LoginPath, fiber.StatusSeeOther)
	}
	return renderError(c, err)
}

func renderError(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": userMessage(err)}
	if invalid := apperrors.InvalidFields(err); len(invalid) > 0 {
		body["invalid"] = invalid
	}
	return c.Status(apperrors.HTTPStatus(err)).JSON(body)
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal Server Error"
}

func paramID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}
