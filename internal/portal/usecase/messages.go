package usecase

// User-facing failure messages.
const (
	MsgInvalidCredentials  = "Invalid credentials. Please try again."
	MsgRegistrationFailed  = "Registration failed. Please try again."
	MsgCreateCourseFailed  = "Failed to create course. Please try again."
	MsgFetchCoursesFailed  = "Failed to fetch courses"
	MsgCourseNotFound      = "Course not found"
	MsgEnrollFailed        = "Failed to enroll"
	MsgDeleteCourseFailed  = "Failed to delete course"
	MsgAddModuleFailed     = "Failed to add module"
	MsgAddLessonFailed     = "Failed to add lesson"
	MsgLoadLessonFailed    = "Failed to load lesson"
	MsgCourseFieldsMissing = "Title, code and description are required"
	MsgSessionExpired      = "Session expired. Please sign in again."
)

// Dashboard copy, per role.
const (
	adminTagline   = "Manage your courses and create new learning content."
	studentTagline = "Continue your learning journey."
	adminSection   = "All Courses"
	studentSection = "My Enrolled Courses"
	adminEmpty     = "No courses yet"
	studentEmpty   = "No enrolled courses"
)
