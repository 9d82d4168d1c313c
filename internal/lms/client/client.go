package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lms-portal/internal/lms/config"
	"lms-portal/internal/lms/domain/model"
	apperrors "lms-portal/internal/shared/errors"
	"lms-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidResponse = errors.New("invalid response from lms backend")

// TokenSource supplies the bearer token of the current client, if any.
type TokenSource interface {
	GetToken(ctx context.Context) (string, bool)
}

// API is the LMS backend as seen by the portal.
type API interface {
	Login(ctx context.Context, email, password string) (*model.LoginResult, error)
	Register(ctx context.Context, in model.Registration) error
	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCourse(ctx context.Context, id uint64) (*model.Course, error)
	Enroll(ctx context.Context, courseID uint64) (string, error)
	CreateCourse(ctx context.Context, in model.CourseInput) (*model.Course, error)
	DeleteCourse(ctx context.Context, id uint64) error
	AddModule(ctx context.Context, courseID uint64, in model.ModuleInput) (*model.Module, error)
	AddLesson(ctx context.Context, moduleID uint64, in model.LessonInput) (*model.Lesson, error)
	GetLesson(ctx context.Context, id uint64) (*model.Lesson, error)
}

// Client talks to the LMS REST backend on behalf of one client session.
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	log     logger.Logger
}

var _ API = (*Client)(nil)

// New creates a client that authenticates with tokens. tokens may be nil for
// anonymous calls such as login and registration.
func New(cfg *config.Config, tokens TokenSource, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		tokens:  tokens,
		log:     log.WithComponent("lms_client"),
	}
}

// Factory binds clients to token sources.
type Factory func(tokens TokenSource) API

// NewFactory returns a Factory producing Clients with shared settings.
func NewFactory(cfg *config.Config, log logger.Logger) Factory {
	return func(tokens TokenSource) API {
		return New(cfg, tokens, log)
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	var out model.LoginResult
	if err := c.do(ctx, fiber.MethodPost, "/auth/login", model.Credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, apperrors.NewInfrastructureError("login response carried no token").
			WithCause(ErrInvalidResponse).WithComponent("lms_client")
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in model.Registration) error {
	return c.do(ctx, fiber.MethodPost, "/auth/register", in, nil)
}

func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	if err := c.do(ctx, fiber.MethodGet, "/courses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCourse(ctx context.Context, id uint64) (*model.Course, error) {
	var out model.Course
	if err := c.do(ctx, fiber.MethodGet, "/courses/"+idPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll returns the backend acknowledgement, "Enrolled successfully" or "Already enrolled".
func (c *Client) Enroll(ctx context.Context, courseID uint64) (string, error) {
	var out model.Message
	if err := c.do(ctx, fiber.MethodPost, "/courses/"+idPath(courseID)+"/enroll", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) CreateCourse(ctx context.Context, in model.CourseInput) (*model.Course, error) {
	var out model.Course
	if err := c.do(ctx, fiber.MethodPost, "/admin/courses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id uint64) error {
	return c.do(ctx, fiber.MethodDelete, "/admin/courses/"+idPath(id), nil, nil)
}

func (c *Client) AddModule(ctx context.Context, courseID uint64, in model.ModuleInput) (*model.Module, error) {
	var out model.Module
	if err := c.do(ctx, fiber.MethodPost, "/admin/courses/"+idPath(courseID)+"/modules", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddLesson(ctx context.Context, moduleID uint64, in model.LessonInput) (*model.Lesson, error) {
	var out model.Lesson
	if err := c.do(ctx, fiber.MethodPost, "/admin/modules/"+idPath(moduleID)+"/lessons", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLesson(ctx context.Context, id uint64) (*model.Lesson, error) {
	var out model.Lesson
	if err := c.do(ctx, fiber.MethodGet, "/lessons/"+idPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request. A nil body sends no payload; a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewInfrastructureError("request cancelled").
			WithCause(fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)).
			WithComponent("lms_client")
	}

	agent := c.agent(method, c.baseURL+path)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(c.timeoutFor(ctx))
	if c.tokens != nil {
		if token, ok := c.tokens.GetToken(ctx); ok {
			agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	if body != nil {
		agent.JSON(body)
	}

	log := c.log.WithContext(ctx).WithFields(map[string]interface{}{
		"method": method,
		"path":   path,
	})

	started := time.Now()
	status, payload, errs := agent.Bytes()
	if len(errs) > 0 {
		log.WithError(errs[0]).Error("LMS backend request failed")
		return apperrors.NewInfrastructureError("lms backend unreachable").
			WithCause(fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, errors.Join(errs...))).
			WithComponent("lms_client")
	}

	log = log.WithFields(map[string]interface{}{
		"status":      status,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		log.Warn("LMS backend rejected request")
		return apperrors.FromHTTPStatus(status, backendMessage(status, payload)).WithComponent("lms_client")
	}
	log.Debug("LMS backend request completed")

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewInfrastructureError("unreadable lms backend response").
			WithCause(fmt.Errorf("%w: %v", ErrInvalidResponse, err)).
			WithComponent("lms_client")
	}
	return nil
}

func (c *Client) agent(method, url string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(url)
	case fiber.MethodDelete:
		return fiber.Delete(url)
	default:
		return fiber.Get(url)
	}
}

// timeoutFor caps the configured timeout by the context deadline.
func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

// backendMessage extracts the {"error": "..."} message of a failed response.
func backendMessage(status int, payload []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status " + strconv.Itoa(status)
}

func idPath(id uint64) string {
	return strconv.FormatUint(id, 10)
}
