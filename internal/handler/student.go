package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/auth"
	"github.com/coursedeck/backend/internal/model"
	"github.com/coursedeck/backend/internal/session"
	"github.com/coursedeck/backend/internal/view"
)

// StudentHandler builds the student-facing dashboard and handles
// enrollment.
type StudentHandler struct {
	Tokens    *auth.TokenStore
	Provider  adapter.Provider
	Renderer  view.Renderer
	JWTSecret string
}

func NewStudentHandler(tokens *auth.TokenStore, provider adapter.Provider, renderer view.Renderer, jwtSecret string) *StudentHandler {
	return &StudentHandler{Tokens: tokens, Provider: provider, Renderer: renderer, JWTSecret: jwtSecret}
}

func (h *StudentHandler) identity(ctx context.Context, sessionID string) model.Identity {
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

// Dashboard fetches the available and enrolled course lists concurrently
// and returns the assembled page. A failure in one section never blanks
// the other.
func (h *StudentHandler) Dashboard(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionID, _, err := GetSessionID(request, h.JWTSecret)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	client, err := h.Provider.ClientFor(ctx, sessionID)
	if err != nil {
		log.Printf("student dashboard: resolving client: %v", err)
		return errorResponse(http.StatusInternalServerError, "Failed to load dashboard"), nil
	}

	page := view.LoadPage(ctx, h.identity(ctx, sessionID), h.Renderer, map[string]view.SectionSpec{
		view.SectionAvailable: {Load: client.ListCourses, Fallback: "Failed to load available courses"},
		view.SectionMine:      {Load: client.ListMyCourses, Fallback: "Failed to load your courses"},
	})
	return jsonResponse(http.StatusOK, page), nil
}

type enrollRequest struct {
	CourseID string `json:"course_id"`
}

// Enroll enrolls the caller in a course and returns a freshly fetched
// enrolled-courses section alongside the upstream's message.
func (h *StudentHandler) Enroll(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionID, _, err := GetSessionID(request, h.JWTSecret)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	var req enrollRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil || req.CourseID == "" {
		return errorResponse(http.StatusBadRequest, "course_id is required"), nil
	}

	client, err := h.Provider.ClientFor(ctx, sessionID)
	if err != nil {
		log.Printf("enroll: resolving client: %v", err)
		return errorResponse(http.StatusInternalServerError, "Enrollment failed"), nil
	}

	message, err := client.Enroll(ctx, req.CourseID)
	if err != nil {
		return errorResponse(adapter.StatusOf(err), adapter.Display(err, "Enrollment failed")), nil
	}

	// One refresh of the enrolled list, so the response reflects the new
	// enrollment without the browser re-requesting the whole dashboard.
	mine := view.SectionFrom(ctx, h.Renderer, view.SectionSpec{
		Load:     client.ListMyCourses,
		Fallback: "Failed to load your courses",
	})
	return jsonResponse(http.StatusOK, map[string]any{
		"message":    message,
		"my_courses": mine,
	}), nil
}
