package adapter

import (
	"context"

	"github.com/coursedeck/backend/internal/model"
)

// Registration is the payload for creating a new account.
type Registration struct {
	Email    string
	Username string
	Password string
	Role     string
}

// Upload carries one course upload: a title, a description and at most one
// media reference — either raw video bytes with their filename, or an
// external embed link.
type Upload struct {
	Title       string
	Description string
	VideoName   string
	Video       []byte
	YoutubeLink string
}

// CourseAPI defines the operations this service issues against the course
// marketplace API. Mutations return the server's human-readable confirmation
// message; every failure is an *APIError carrying a displayable message.
// Implementations never retry: each call is fire-once and the caller decides
// whether to re-invoke.
type CourseAPI interface {
	// Register creates a new account. No authentication required.
	Register(ctx context.Context, reg Registration) (string, error)

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// ListCourses lists all courses with aggregate enrollment counts.
	ListCourses(ctx context.Context) ([]model.Course, error)

	// ListMyCourses lists the courses the caller is enrolled in, each
	// annotated with its enrollment time.
	ListMyCourses(ctx context.Context) ([]model.Course, error)

	// Enroll enrolls the caller in a course.
	Enroll(ctx context.Context, courseID string) (string, error)

	// TeacherDashboard lists the courses uploaded by the caller.
	TeacherDashboard(ctx context.Context) ([]model.Course, error)

	// UploadCourse publishes a new course.
	UploadCourse(ctx context.Context, up Upload) (string, error)
}

// Provider resolves a browser session to a CourseAPI client bound to that
// session's bearer token. A session with no stored token still gets a
// client — its requests simply carry no bearer credential and upstream
// authorization failures surface as display errors.
type Provider interface {
	ClientFor(ctx context.Context, sessionID string) (CourseAPI, error)
}
