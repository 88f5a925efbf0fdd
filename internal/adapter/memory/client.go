package memory

import (
	"context"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/model"
	"github.com/coursedeck/backend/internal/session"
)

// Client adapts a Store to the CourseAPI interface. The caller's identity
// comes from its bearer token, the same way the upstream reads its own.
type Client struct {
	store *Store
	token string
}

func NewClient(store *Store, token string) *Client {
	return &Client{store: store, token: token}
}

func (c *Client) caller() (user, error) {
	id, err := session.DecodeIdentity(c.token)
	if err != nil {
		return user{}, &adapter.APIError{StatusCode: 401, Message: "Authentication required"}
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	u, ok := c.store.users[id.Username]
	if !ok {
		return user{}, &adapter.APIError{StatusCode: 401, Message: "Authentication required"}
	}
	return u, nil
}

func (c *Client) Register(ctx context.Context, reg adapter.Registration) (string, error) {
	return c.store.Register(reg)
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.store.Login(username, password)
}

func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.store.listCourses(), nil
}

func (c *Client) ListMyCourses(ctx context.Context) ([]model.Course, error) {
	u, err := c.caller()
	if err != nil {
		return nil, err
	}
	return c.store.myCourses(u.Username), nil
}

func (c *Client) Enroll(ctx context.Context, courseID string) (string, error) {
	u, err := c.caller()
	if err != nil {
		return "", err
	}
	return c.store.enroll(u.Username, courseID)
}

func (c *Client) TeacherDashboard(ctx context.Context) ([]model.Course, error) {
	u, err := c.caller()
	if err != nil {
		return nil, err
	}
	return c.store.uploadedBy(u.Username), nil
}

func (c *Client) UploadCourse(ctx context.Context, up adapter.Upload) (string, error) {
	u, err := c.caller()
	if err != nil {
		return "", err
	}
	return c.store.upload(u, up)
}
