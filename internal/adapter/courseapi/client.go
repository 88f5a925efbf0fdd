package courseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/model"
)

// Client talks to the upstream course marketplace API over HTTP. A client
// carries at most one bearer token; tokenless clients are valid and simply
// omit the Authorization header, letting the upstream decide what each
// endpoint requires.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs one request against the upstream and decodes the response
// into out. Upstream errors arrive as {"error": "..."} with a non-2xx
// status; they are surfaced as *adapter.APIError so handlers can show the
// upstream's own message.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &adapter.APIError{Message: fmt.Sprintf("invalid request: %v", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &adapter.APIError{Message: fmt.Sprintf("course API unreachable: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &adapter.APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var upstream struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &upstream); err == nil && upstream.Error != "" {
			return &adapter.APIError{StatusCode: resp.StatusCode, Message: upstream.Error}
		}
		return &adapter.APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &adapter.APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response from course API: %v", err)}
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &adapter.APIError{Message: fmt.Sprintf("encoding request: %v", err)}
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) Register(ctx context.Context, reg adapter.Registration) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/register/", reg, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/login-password/", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var resp struct {
		Courses []model.Course `json:"courses"`
	}
	if err := c.do(ctx, http.MethodGet, "/courses/", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

func (c *Client) ListMyCourses(ctx context.Context) ([]model.Course, error) {
	var resp struct {
		Courses []model.Course `json:"courses"`
	}
	if err := c.do(ctx, http.MethodGet, "/my-courses/", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

func (c *Client) Enroll(ctx context.Context, courseID string) (string, error) {
	body := map[string]string{"course_id": courseID}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/enroll/", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// TeacherDashboard lists the caller's uploaded courses. The upstream
// returns a bare video_id for self-hosted videos here; normalize it to a
// playable URL so callers see the same Course shape everywhere.
func (c *Client) TeacherDashboard(ctx context.Context) ([]model.Course, error) {
	var resp struct {
		Courses []model.Course `json:"uploaded_courses"`
	}
	if err := c.do(ctx, http.MethodGet, "/teacher-dashboard/", "", nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Courses {
		if resp.Courses[i].VideoURL == "" && resp.Courses[i].VideoID != "" {
			resp.Courses[i].VideoURL = c.baseURL + "/serve_video/" + resp.Courses[i].VideoID
		}
	}
	return resp.Courses, nil
}

func (c *Client) UploadCourse(ctx context.Context, up adapter.Upload) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("title", up.Title); err != nil {
		return "", &adapter.APIError{Message: fmt.Sprintf("encoding upload: %v", err)}
	}
	if err := w.WriteField("description", up.Description); err != nil {
		return "", &adapter.APIError{Message: fmt.Sprintf("encoding upload: %v", err)}
	}
	if len(up.Video) > 0 {
		part, err := w.CreateFormFile("video", up.VideoName)
		if err != nil {
			return "", &adapter.APIError{Message: fmt.Sprintf("encoding upload: %v", err)}
		}
		if _, err := part.Write(up.Video); err != nil {
			return "", &adapter.APIError{Message: fmt.Sprintf("encoding upload: %v", err)}
		}
	} else if up.YoutubeLink != "" {
		if err := w.WriteField("youtube_link", up.YoutubeLink); err != nil {
			return "", &adapter.APIError{Message: fmt.Sprintf("encoding upload: %v", err)}
		}
	}
	if err := w.Close(); err != nil {
		return "", &adapter.APIError{Message: fmt.Sprintf("encoding upload: %v", err)}
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/upload-course/", w.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
