package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/coursedeck/backend/internal/session"
)

// GetSessionID extracts and verifies the session token from the request,
// checking the Authorization header first and the session cookie second.
// It returns the session ID and the role claim baked into the cookie.
func GetSessionID(request events.APIGatewayProxyRequest, jwtSecret string) (string, string, error) {
	var tokenString string

	authHeader := ""
	for k, v := range request.Headers {
		if strings.EqualFold(k, "Authorization") {
			authHeader = v
			break
		}
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	} else {
		cookieHeader := ""
		for k, v := range request.Headers {
			if strings.EqualFold(k, "Cookie") {
				cookieHeader = v
				break
			}
		}
		for _, cookie := range strings.Split(cookieHeader, ";") {
			cookie = strings.TrimSpace(cookie)
			if strings.HasPrefix(cookie, session.CookieName+"=") {
				tokenString = strings.TrimPrefix(cookie, session.CookieName+"=")
				break
			}
		}
	}

	if tokenString == "" {
		return "", "", fmt.Errorf("no session token found")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid session token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", "", fmt.Errorf("session id missing from token")
	}
	role, _ := claims["role"].(string)
	return sid, role, nil
}

func jsonResponse(statusCode int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"internal server error"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

func errorResponse(statusCode int, message string) events.APIGatewayProxyResponse {
	return jsonResponse(statusCode, map[string]string{"error": message})
}
