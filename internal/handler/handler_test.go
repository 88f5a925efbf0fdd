package handler_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/auth"
	"github.com/coursedeck/backend/internal/crypto"
	"github.com/coursedeck/backend/internal/model"
	"github.com/coursedeck/backend/internal/session"
)

const (
	testJWTSecret = "test-jwt-secret"
	testSessionID = "sess-test-1"
)

func makeToken(t *testing.T, sessionID, role string) string {
	t.Helper()
	token, err := session.NewToken(testJWTSecret, sessionID, role, session.TTL)
	if err != nil {
		t.Fatalf("signing session token: %v", err)
	}
	return token
}

func makeRequest(t *testing.T, method, path, body string, sessionID string) events.APIGatewayProxyRequest {
	t.Helper()
	req := events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
	if sessionID != "" {
		req.Headers["Cookie"] = "session_token=" + makeToken(t, sessionID, model.RoleStudent)
	}
	return req
}

func newTestTokens(t *testing.T, sessionID, bearer string) *auth.TokenStore {
	t.Helper()
	tokens := auth.NewTokenStore(nil, "", crypto.NewMockEncryptor())
	if sessionID != "" {
		if err := tokens.Save(context.Background(), sessionID, bearer); err != nil {
			t.Fatalf("seeding token store: %v", err)
		}
	}
	return tokens
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decoding response body %q: %v", resp.Body, err)
	}
	return body
}

// stubClient is a scriptable CourseAPI with per-method call counters.
type stubClient struct {
	courses    []model.Course
	myCourses  []model.Course
	uploaded   []model.Course
	coursesErr error
	myErr      error
	uploadErr  error
	enrollErr  error

	loginToken string
	loginErr   error

	registerCalls int
	listCalls     int
	myCalls       int
	enrollCalls   int
	dashCalls     int
	uploadCalls   int

	lastUpload adapter.Upload
}

func (s *stubClient) Register(ctx context.Context, reg adapter.Registration) (string, error) {
	s.registerCalls++
	return "User registered successfully", nil
}

func (s *stubClient) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.loginToken, nil
}

func (s *stubClient) ListCourses(ctx context.Context) ([]model.Course, error) {
	s.listCalls++
	return s.courses, s.coursesErr
}

func (s *stubClient) ListMyCourses(ctx context.Context) ([]model.Course, error) {
	s.myCalls++
	return s.myCourses, s.myErr
}

func (s *stubClient) Enroll(ctx context.Context, courseID string) (string, error) {
	s.enrollCalls++
	if s.enrollErr != nil {
		return "", s.enrollErr
	}
	return "Enrolled successfully", nil
}

func (s *stubClient) TeacherDashboard(ctx context.Context) ([]model.Course, error) {
	s.dashCalls++
	return s.uploaded, nil
}

func (s *stubClient) UploadCourse(ctx context.Context, up adapter.Upload) (string, error) {
	s.uploadCalls++
	s.lastUpload = up
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "Course uploaded successfully", nil
}

// stubProvider hands every session the same client.
type stubProvider struct {
	client *stubClient
}

func (p *stubProvider) ClientFor(ctx context.Context, sessionID string) (adapter.CourseAPI, error) {
	return p.client, nil
}
