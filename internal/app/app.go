package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/adapter/courseapi"
	"github.com/coursedeck/backend/internal/adapter/memory"
	"github.com/coursedeck/backend/internal/auth"
	"github.com/coursedeck/backend/internal/crypto"
	"github.com/coursedeck/backend/internal/handler"
	"github.com/coursedeck/backend/internal/markdown"
	"github.com/coursedeck/backend/internal/secret"
)

// App holds the wired handlers and routes API Gateway requests to them.
type App struct {
	authHandler    *handler.AuthHandler
	studentHandler *handler.StudentHandler
	teacherHandler *handler.TeacherHandler

	apiGatewaySecret string
	frontendURL      string
	devMode          bool
}

// HybridProvider routes demo sessions to the in-memory marketplace and
// everything else to the real course API.
type HybridProvider struct {
	api  adapter.Provider
	demo adapter.Provider
}

func (p *HybridProvider) ClientFor(ctx context.Context, sessionID string) (adapter.CourseAPI, error) {
	if strings.HasPrefix(sessionID, "demo-sess-") {
		return p.demo.ClientFor(ctx, sessionID)
	}
	return p.api.ClientFor(ctx, sessionID)
}

func NewApp(ctx context.Context) *App {
	devMode := os.Getenv("DEV_MODE") == "true"

	var tokens *auth.TokenStore
	var resolver secret.Resolver

	if devMode {
		log.Println("running in dev mode: in-memory token store, mock encryption")
		tokens = auth.NewTokenStore(nil, "", &crypto.MockEncryptor{})
		resolver = &secret.EnvResolver{}
	} else {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			panic(fmt.Sprintf("loading AWS config: %v", err))
		}

		keyID := os.Getenv("KMS_KEY_ID")
		if keyID == "" {
			keyID = "alias/coursedeck-token-key"
		}
		tableName := os.Getenv("SESSION_TOKENS_TABLE")
		if tableName == "" {
			tableName = "SessionTokens"
		}

		encryptor := crypto.NewKMSEncryptor(kms.NewFromConfig(cfg), keyID)
		tokens = auth.NewTokenStore(dynamodb.NewFromConfig(cfg), tableName, encryptor)
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(cfg))
	}

	jwtSecretParam := os.Getenv("JWT_SECRET_PARAM")
	if jwtSecretParam == "" {
		jwtSecretParam = "/coursedeck/jwt-secret"
	}
	jwtSecret, err := resolver.GetSecret(ctx, jwtSecretParam)
	if err != nil {
		if !devMode {
			panic(fmt.Sprintf("resolving JWT secret: %v", err))
		}
		log.Printf("dev mode: JWT secret unavailable (%v), using default", err)
		jwtSecret = "default-dev-secret"
	}

	apiGatewaySecret := ""
	if param := os.Getenv("API_GATEWAY_SECRET_PARAM"); param != "" {
		apiGatewaySecret, err = resolver.GetSecret(ctx, param)
		if err != nil {
			panic(fmt.Sprintf("resolving API gateway secret: %v", err))
		}
	}

	baseURL := os.Getenv("COURSE_API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	demoStore := memory.NewStore(jwtSecret)
	provider := &HybridProvider{
		api:  courseapi.NewProvider(baseURL, tokens),
		demo: memory.NewProvider(demoStore, tokens),
	}

	renderer := markdown.NewRenderer()

	return &App{
		authHandler:    handler.NewAuthHandler(tokens, provider, jwtSecret, devMode),
		studentHandler: handler.NewStudentHandler(tokens, provider, renderer, jwtSecret),
		teacherHandler: handler.NewTeacherHandler(tokens, provider, renderer, jwtSecret),

		apiGatewaySecret: apiGatewaySecret,
		frontendURL:      frontendURL,
		devMode:          devMode,
	}
}

// HandleRequest routes one API Gateway event. Every response, routed or
// not, goes out through withCORS: the frontend lives on another origin
// and sends credentialed requests, so a response without the CORS headers
// is one the browser throws away.
func (a *App) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return a.withCORS(events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}), nil
	}

	if !a.devMode && a.apiGatewaySecret != "" {
		verified := false
		for k, v := range request.Headers {
			if strings.EqualFold(k, "X-Origin-Verify") && v == a.apiGatewaySecret {
				verified = true
				break
			}
		}
		if !verified {
			return a.withCORS(plainError(http.StatusForbidden, `{"error":"forbidden"}`)), nil
		}
	}

	path := strings.TrimPrefix(request.Path, "/api")
	route := request.HTTPMethod + " " + path

	var resp events.APIGatewayProxyResponse
	var err error
	switch route {
	case "POST /register":
		resp, err = a.authHandler.Register(ctx, request)
	case "POST /login":
		resp, err = a.authHandler.Login(ctx, request)
	case "GET /demo-login":
		resp, err = a.authHandler.DemoLogin(ctx, request)
	case "POST /logout":
		resp, err = a.authHandler.Logout(ctx, request)
	case "GET /me":
		resp, err = a.authHandler.Me(ctx, request)
	case "GET /student/dashboard":
		resp, err = a.studentHandler.Dashboard(ctx, request)
	case "POST /enroll":
		resp, err = a.studentHandler.Enroll(ctx, request)
	case "GET /teacher/dashboard":
		resp, err = a.teacherHandler.Dashboard(ctx, request)
	case "POST /upload-course":
		resp, err = a.teacherHandler.Upload(ctx, request)
	default:
		resp = plainError(http.StatusNotFound, `{"error":"not found"}`)
	}
	if err != nil {
		return resp, err
	}
	return a.withCORS(resp), nil
}

// withCORS stamps the cross-origin headers on a response, preserving
// whatever the handler already set (including Set-Cookie in
// MultiValueHeaders).
func (a *App) withCORS(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = a.frontendURL
	resp.Headers["Access-Control-Allow-Methods"] = "GET, POST, OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type, Authorization"
	resp.Headers["Access-Control-Allow-Credentials"] = "true"
	return resp
}

func plainError(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
