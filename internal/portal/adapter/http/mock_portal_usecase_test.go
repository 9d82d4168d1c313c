package http

import (
	"context"

	lmsmodel "lms-portal/internal/lms/domain/model"
	"lms-portal/internal/portal/usecase"
	sessionmodel "lms-portal/internal/session/domain/model"

	"github.com/stretchr/testify/mock"
)

// mockPortalUsecase is a mock implementation of usecase.PortalUsecaseInterface
type mockPortalUsecase struct {
	mock.Mock
}

func (m *mockPortalUsecase) Login(ctx context.Context, sess usecase.Session, email, password string) (*sessionmodel.User, error) {
	args := m.Called(ctx, sess, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionmodel.User), args.Error(1)
}

func (m *mockPortalUsecase) Register(ctx context.Context, in usecase.RegisterInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *mockPortalUsecase) Logout(ctx context.Context, sess usecase.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *mockPortalUsecase) Dashboard(ctx context.Context, sess usecase.Session) (*usecase.DashboardView, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DashboardView), args.Error(1)
}

func (m *mockPortalUsecase) Courses(ctx context.Context, sess usecase.Session, query string) (*usecase.CoursesView, error) {
	args := m.Called(ctx, sess, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CoursesView), args.Error(1)
}

func (m *mockPortalUsecase) CourseDetail(ctx context.Context, sess usecase.Session, id uint64) (*usecase.CourseDetailView, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CourseDetailView), args.Error(1)
}

func (m *mockPortalUsecase) Enroll(ctx context.Context, sess usecase.Session, courseID uint64) (*usecase.EnrollView, error) {
	args := m.Called(ctx, sess, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.EnrollView), args.Error(1)
}

func (m *mockPortalUsecase) CreateCourse(ctx context.Context, sess usecase.Session, in usecase.CreateCourseInput) (*lmsmodel.Course, error) {
	args := m.Called(ctx, sess, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Course), args.Error(1)
}

func (m *mockPortalUsecase) DeleteCourse(ctx context.Context, sess usecase.Session, id uint64) error {
	args := m.Called(ctx, sess, id)
	return args.Error(0)
}

func (m *mockPortalUsecase) AddModule(ctx context.Context, sess usecase.Session, courseID uint64, in usecase.AddModuleInput) (*lmsmodel.Module, error) {
	args := m.Called(ctx, sess, courseID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Module), args.Error(1)
}

func (m *mockPortalUsecase) AddLesson(ctx context.Context, sess usecase.Session, moduleID uint64, in usecase.AddLessonInput) (*lmsmodel.Lesson, error) {
	args := m.Called(ctx, sess, moduleID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lmsmodel.Lesson), args.Error(1)
}

func (m *mockPortalUsecase) Lesson(ctx context.Context, sess usecase.Session, id uint64) (*usecase.LessonView, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LessonView), args.Error(1)
}

func (m *mockPortalUsecase) SessionInfo(ctx context.Context, sess usecase.Session) *usecase.SessionView {
	args := m.Called(ctx, sess)
	return args.Get(0).(*usecase.SessionView)
}
