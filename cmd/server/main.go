// Local development server that adapts plain HTTP requests into API
// Gateway events and feeds them to the same handler the Lambda runs.
package main

import (
	"context"
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/coursedeck/backend/internal/app"
)

func main() {
	os.Setenv("DEV_MODE", "true")

	a := app.NewApp(context.Background())

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading body", http.StatusBadRequest)
			return
		}

		headers := make(map[string]string)
		for k, v := range r.Header {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}
		query := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}

		event := events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			Headers:               headers,
			QueryStringParameters: query,
		}
		// API Gateway delivers binary payloads base64-encoded; mirror
		// that for multipart uploads so the handler sees the same shape.
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			event.Body = base64.StdEncoding.EncodeToString(body)
			event.IsBase64Encoded = true
		} else {
			event.Body = string(body)
		}

		resp, err := a.HandleRequest(r.Context(), event)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		for k, values := range resp.MultiValueHeaders {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		io.WriteString(w, resp.Body)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("local server listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
