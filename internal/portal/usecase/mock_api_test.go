package usecase

import (
	"context"

	"lms-portal/internal/lms/client"
	lmsmodel "lms-portal/internal/lms/domain/model"

	"github.com/stretchr/testify/mock"
)

// MockAPI is a mock implementation of client.API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) factory() client.Factory {
	return func(client.TokenSource) client.API { return m }
}

func (m *MockAPI) Login(ctx context.Context, email, password string) (*lmsmodel.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.LoginResult), args.Error(1)
}

func (m *MockAPI) Register(ctx context.Context, in lmsmodel.Registration) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAPI) ListCourses(ctx context.Context) ([]lmsmodel.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lmsmodel.Course), args.Error(1)
}

func (m *MockAPI) GetCourse(ctx context.Context, id uint64) (*lmsmodel.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Course), args.Error(1)
}

func (m *MockAPI) Enroll(ctx context.Context, courseID uint64) (string, error) {
	args := m.Called(ctx, courseID)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) CreateCourse(ctx context.Context, in lmsmodel.CourseInput) (*lmsmodel.Course, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Course), args.Error(1)
}

func (m *MockAPI) DeleteCourse(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPI) AddModule(ctx context.Context, courseID uint64, in lmsmodel.ModuleInput) (*lmsmodel.Module, error) {
	args := m.Called(ctx, courseID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Module), args.Error(1)
}

func (m *MockAPI) AddLesson(ctx context.Context, moduleID uint64, in lmsmodel.LessonInput) (*lmsmodel.Lesson, error) {
	args := m.Called(ctx, moduleID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Lesson), args.Error(1)
}

func (m *MockAPI) GetLesson(ctx context.Context, id uint64) (*lmsmodel.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Lesson), args.Error(1)
}
