package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/handler"
	"github.com/coursedeck/backend/internal/model"
)

func newTeacherHandler(t *testing.T, client *stubClient) *handler.TeacherHandler {
	t.Helper()
	bearer := upstreamToken(`{"username":"prof","email":"prof@example.com","role":"teacher"}`)
	tokens := newTestTokens(t, testSessionID, bearer)
	return handler.NewTeacherHandler(tokens, &stubProvider{client: client}, nil, testJWTSecret)
}

type uploadFields struct {
	title       string
	description string
	youtubeLink string
	videoName   string
	video       []byte
}

func multipartRequest(t *testing.T, sessionID string, f uploadFields) events.APIGatewayProxyRequest {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if f.title != "" {
		w.WriteField("title", f.title)
	}
	if f.description != "" {
		w.WriteField("description", f.description)
	}
	if f.youtubeLink != "" {
		w.WriteField("youtube_link", f.youtubeLink)
	}
	if f.video != nil {
		part, err := w.CreateFormFile("video", f.videoName)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		part.Write(f.video)
	}
	w.Close()

	req := makeRequest(t, "POST", "/upload-course", "", sessionID)
	req.Headers["Content-Type"] = w.FormDataContentType()
	req.Body = base64.StdEncoding.EncodeToString(buf.Bytes())
	req.IsBase64Encoded = true
	return req
}

func TestTeacherDashboard(t *testing.T) {
	client := &stubClient{
		uploaded: []model.Course{{ID: "7", Title: "My Course", VideoURL: "/serve_video/7"}},
		courses:  []model.Course{{ID: "7"}, {ID: "8"}},
	}
	h := newTeacherHandler(t, client)

	resp, err := h.Dashboard(context.Background(), makeRequest(t, "GET", "/teacher/dashboard", "", testSessionID))
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, resp.Body)
	}

	body := decodeBody(t, resp)
	sections, _ := body["sections"].(map[string]any)
	uploaded, _ := sections["uploaded"].(map[string]any)
	if n := len(uploaded["courses"].([]any)); n != 1 {
		t.Errorf("uploaded has %d courses", n)
	}
	available, _ := sections["available"].(map[string]any)
	if n := len(available["courses"].([]any)); n != 2 {
		t.Errorf("available has %d courses", n)
	}
}

func TestUploadSuccessResetsForm(t *testing.T) {
	client := &stubClient{
		uploaded: []model.Course{{ID: "9", Title: "Fresh Course"}},
	}
	h := newTeacherHandler(t, client)

	req := multipartRequest(t, testSessionID, uploadFields{
		title:       "Fresh Course",
		description: "notes",
		videoName:   "lecture.mp4",
		video:       []byte("bytes"),
	})
	resp, err := h.Upload(context.Background(), req)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, resp.Body)
	}

	if client.lastUpload.Title != "Fresh Course" || client.lastUpload.VideoName != "lecture.mp4" {
		t.Errorf("upload sent = %+v", client.lastUpload)
	}
	if string(client.lastUpload.Video) != "bytes" {
		t.Errorf("video bytes = %q", client.lastUpload.Video)
	}

	body := decodeBody(t, resp)
	if body["form_reset"] != true {
		t.Errorf("form_reset = %v", body["form_reset"])
	}
	form, _ := body["form"].(map[string]any)
	if form["title"] != "" || form["description"] != "" {
		t.Errorf("form not cleared: %v", form)
	}
	uploaded, _ := body["uploaded_courses"].(map[string]any)
	if n := len(uploaded["courses"].([]any)); n != 1 {
		t.Errorf("uploaded_courses has %d entries", n)
	}
	if client.dashCalls != 1 {
		t.Errorf("dashCalls = %d, want one refresh", client.dashCalls)
	}
}

func TestUploadFailureKeepsForm(t *testing.T) {
	client := &stubClient{
		uploadErr: &adapter.APIError{StatusCode: 403, Message: "Only teachers can upload courses"},
	}
	h := newTeacherHandler(t, client)

	req := multipartRequest(t, testSessionID, uploadFields{
		title:       "Kept Draft",
		description: "still here",
		youtubeLink: "https://youtu.be/x",
	})
	resp, err := h.Upload(context.Background(), req)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["error"] != "Only teachers can upload courses" {
		t.Errorf("error = %v", body["error"])
	}
	form, _ := body["form"].(map[string]any)
	if form["title"] != "Kept Draft" || form["description"] != "still here" || form["youtube_link"] != "https://youtu.be/x" {
		t.Errorf("form changed on failure: %v", form)
	}
	if client.dashCalls != 0 {
		t.Errorf("dashCalls = %d, failed upload must not refresh", client.dashCalls)
	}
}

type failingProvider struct{}

func (failingProvider) ClientFor(ctx context.Context, sessionID string) (adapter.CourseAPI, error) {
	return nil, errors.New("token store unavailable")
}

func TestUploadClientFailureKeepsForm(t *testing.T) {
	bearer := upstreamToken(`{"username":"prof","email":"prof@example.com","role":"teacher"}`)
	tokens := newTestTokens(t, testSessionID, bearer)
	h := handler.NewTeacherHandler(tokens, failingProvider{}, nil, testJWTSecret)

	req := multipartRequest(t, testSessionID, uploadFields{
		title:       "Kept Draft",
		description: "still here",
	})
	resp, err := h.Upload(context.Background(), req)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Upload failed" {
		t.Errorf("error = %v", body["error"])
	}
	form, _ := body["form"].(map[string]any)
	if form["title"] != "Kept Draft" || form["description"] != "still here" {
		t.Errorf("draft lost when no client could be resolved: %v", body["form"])
	}
}

func TestUploadRejectsNonMultipart(t *testing.T) {
	client := &stubClient{}
	h := newTeacherHandler(t, client)

	resp, err := h.Upload(context.Background(), makeRequest(t, "POST", "/upload-course", `{"title":"x"}`, testSessionID))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if client.uploadCalls != 0 {
		t.Errorf("uploadCalls = %d", client.uploadCalls)
	}
}

func TestUploadUnauthenticated(t *testing.T) {
	h := newTeacherHandler(t, &stubClient{})
	resp, err := h.Upload(context.Background(), multipartRequest(t, "", uploadFields{title: "x"}))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
