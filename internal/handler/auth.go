package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/auth"
	"github.com/coursedeck/backend/internal/model"
	"github.com/coursedeck/backend/internal/session"
)

// AuthHandler covers registration, login, logout, and the current-user
// endpoint. Login exchanges marketplace credentials for an upstream bearer
// token, stores it server-side, and hands the browser only a signed
// session cookie.
type AuthHandler struct {
	Tokens    *auth.TokenStore
	Provider  adapter.Provider
	JWTSecret string
	DevMode   bool
}

func NewAuthHandler(tokens *auth.TokenStore, provider adapter.Provider, jwtSecret string, devMode bool) *AuthHandler {
	return &AuthHandler{Tokens: tokens, Provider: provider, JWTSecret: jwtSecret, DevMode: devMode}
}

func (h *AuthHandler) Register(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var reg adapter.Registration
	if err := json.Unmarshal([]byte(request.Body), &reg); err != nil {
		return errorResponse(http.StatusBadRequest, "Invalid request body"), nil
	}

	client, err := h.Provider.ClientFor(ctx, "")
	if err != nil {
		log.Printf("register: resolving client: %v", err)
		return errorResponse(http.StatusInternalServerError, "Registration failed"), nil
	}

	message, err := client.Register(ctx, reg)
	if err != nil {
		return errorResponse(adapter.StatusOf(err), adapter.Display(err, "Registration failed")), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"message": message}), nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var creds loginRequest
	if err := json.Unmarshal([]byte(request.Body), &creds); err != nil {
		return errorResponse(http.StatusBadRequest, "Invalid request body"), nil
	}

	client, err := h.Provider.ClientFor(ctx, "")
	if err != nil {
		log.Printf("login: resolving client: %v", err)
		return errorResponse(http.StatusInternalServerError, "Login failed"), nil
	}

	token, err := client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return errorResponse(adapter.StatusOf(err), adapter.Display(err, "Login failed")), nil
	}

	identity, err := session.DecodeIdentity(token)
	if err != nil {
		// The bearer token still works upstream even if we cannot read
		// its payload; proceed without a cached identity.
		log.Printf("login: decoding identity: %v", err)
		identity = model.Identity{Username: creds.Username}
	}

	sessionID := uuid.NewString()
	if err := h.Tokens.Save(ctx, sessionID, token); err != nil {
		log.Printf("login: storing token: %v", err)
		return errorResponse(http.StatusInternalServerError, "Login failed"), nil
	}

	return h.sessionResponse(sessionID, identity)
}

// DemoLogin signs into the seeded in-memory marketplace without
// credentials. The session ID prefix routes all later calls to the
// memory adapter.
func (h *AuthHandler) DemoLogin(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	username := "demo-student"
	if request.QueryStringParameters["role"] == model.RoleTeacher {
		username = "demo-teacher"
	}

	sessionID := "demo-sess-" + uuid.NewString()
	client, err := h.Provider.ClientFor(ctx, sessionID)
	if err != nil {
		log.Printf("demo login: resolving client: %v", err)
		return errorResponse(http.StatusInternalServerError, "Demo login failed"), nil
	}

	token, err := client.Login(ctx, username, "demo")
	if err != nil {
		return errorResponse(adapter.StatusOf(err), adapter.Display(err, "Demo login failed")), nil
	}
	if err := h.Tokens.Save(ctx, sessionID, token); err != nil {
		log.Printf("demo login: storing token: %v", err)
		return errorResponse(http.StatusInternalServerError, "Demo login failed"), nil
	}

	identity, err := session.DecodeIdentity(token)
	if err != nil {
		identity = model.Identity{Username: username}
	}
	return h.sessionResponse(sessionID, identity)
}

func (h *AuthHandler) sessionResponse(sessionID string, identity model.Identity) (events.APIGatewayProxyResponse, error) {
	cookie, err := session.NewToken(h.JWTSecret, sessionID, identity.Role, session.TTL)
	if err != nil {
		log.Printf("signing session token: %v", err)
		return errorResponse(http.StatusInternalServerError, "Login failed"), nil
	}

	resp := jsonResponse(http.StatusOK, map[string]any{
		"message": "Logged in successfully",
		"user":    identity,
	})
	resp.MultiValueHeaders = map[string][]string{
		"Set-Cookie": {h.cookieString(cookie, int(session.TTL.Seconds()))},
	}
	return resp, nil
}

func (h *AuthHandler) cookieString(value string, maxAge int) string {
	sameSite := "None"
	secure := "; Secure"
	if h.DevMode {
		sameSite = "Lax"
		secure = ""
	}
	return fmt.Sprintf("%s=%s; HttpOnly; Path=/; Max-Age=%d; SameSite=%s%s", session.CookieName, value, maxAge, sameSite, secure)
}

func (h *AuthHandler) Logout(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if sessionID, _, err := GetSessionID(request, h.JWTSecret); err == nil {
		if err := h.Tokens.Clear(ctx, sessionID); err != nil {
			log.Printf("logout: clearing token: %v", err)
		}
	}

	resp := jsonResponse(http.StatusOK, map[string]bool{"success": true})
	resp.MultiValueHeaders = map[string][]string{
		"Set-Cookie": {h.cookieString("", 0)},
	}
	return resp, nil
}

// Me reports the identity behind the current session, decoded from the
// stored bearer token.
func (h *AuthHandler) Me(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionID, _, err := GetSessionID(request, h.JWTSecret)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	token, err := h.Tokens.Get(ctx, sessionID)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	identity, err := session.DecodeIdentity(token)
	if err != nil {
		return errorResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}
	return jsonResponse(http.StatusOK, map[string]any{"user": identity}), nil
}
