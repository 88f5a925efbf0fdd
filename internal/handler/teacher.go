package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/auth"
	"github.com/coursedeck/backend/internal/model"
	"github.com/coursedeck/backend/internal/session"
	"github.com/coursedeck/backend/internal/view"
)

// TeacherHandler builds the teacher dashboard and handles course uploads.
type TeacherHandler struct {
	Tokens    *auth.TokenStore
	Provider  adapter.Provider
	Renderer  view.Renderer
	JWTSecret string
}

func NewTeacherHandler(tokens *auth.TokenStore, provider adapter.Provider, renderer view.Renderer, jwtSecret string) *TeacherHandler {
	return &TeacherHandler{Tokens: tokens, Provider: provider, Renderer: renderer, JWTSecret: jwtSecret}
}

func (h *TeacherHandler) identity(ctx context.Context, sessionID string) model.Identity {
	token, err := h.Tokens.Get(ctx, sessionID)
	if err != nil {
		return model.Identity{}
	}
	id, err := session.DecodeIdentity(token)
	if err != nil {
		return model.Identity{}
	}
	return id
}

func (h *TeacherHandler) Dashboard(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionID, _, err := GetSessionID(request, h.JWTSecret)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	client, err := h.Provider.ClientFor(ctx, sessionID)
	if err != nil {
		log.Printf("teacher dashboard: resolving client: %v", err)
		return errorResponse(http.StatusInternalServerError, "Failed to load dashboard"), nil
	}

	page := view.LoadPage(ctx, h.identity(ctx, sessionID), h.Renderer, map[string]view.SectionSpec{
		view.SectionUploaded:  {Load: client.TeacherDashboard, Fallback: "Failed to load your uploaded courses"},
		view.SectionAvailable: {Load: client.ListCourses, Fallback: "Failed to load available courses"},
	})
	return jsonResponse(http.StatusOK, page), nil
}

// Upload submits a new course. On failure the submitted form is echoed
// back untouched so the browser can redisplay it; only a success clears
// it.
func (h *TeacherHandler) Upload(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionID, _, err := GetSessionID(request, h.JWTSecret)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	form, err := parseUploadForm(request)
	if err != nil {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err)), nil
	}

	client, err := h.Provider.ClientFor(ctx, sessionID)
	if err != nil {
		log.Printf("upload: resolving client: %v", err)
		return jsonResponse(http.StatusInternalServerError, map[string]any{
			"error": "Upload failed",
			"form":  form,
		}), nil
	}

	message, err := client.UploadCourse(ctx, adapter.Upload{
		Title:       form.Title,
		Description: form.Description,
		VideoName:   form.VideoName,
		Video:       form.Video,
		YoutubeLink: form.YoutubeLink,
	})
	if err != nil {
		return jsonResponse(adapter.StatusOf(err), map[string]any{
			"error": adapter.Display(err, "Upload failed"),
			"form":  form,
		}), nil
	}

	form.Reset()
	uploaded := view.SectionFrom(ctx, h.Renderer, view.SectionSpec{
		Load:     client.TeacherDashboard,
		Fallback: "Failed to load your uploaded courses",
	})
	return jsonResponse(http.StatusOK, map[string]any{
		"message":          message,
		"form":             form,
		"form_reset":       true,
		"uploaded_courses": uploaded,
	}), nil
}

// parseUploadForm reads the multipart body of an API Gateway request.
// Gateways deliver binary bodies base64-encoded.
func parseUploadForm(request events.APIGatewayProxyRequest) (*view.UploadForm, error) {
	contentType := ""
	for k, v := range request.Headers {
		if strings.EqualFold(k, "Content-Type") {
			contentType = v
			break
		}
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("expected multipart form data")
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("missing multipart boundary")
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		body, err = base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding body: %w", err)
		}
	}

	form := &view.UploadForm{}
	reader := multipart.NewReader(strings.NewReader(string(body)), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading form: %w", err)
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("reading form part: %w", err)
		}
		switch part.FormName() {
		case "title":
			form.Title = string(data)
		case "description":
			form.Description = string(data)
		case "youtube_link":
			form.YoutubeLink = string(data)
		case "video":
			form.VideoName = part.FileName()
			form.Video = data
		}
	}
	return form, nil
}
