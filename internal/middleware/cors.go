package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser clients to send bearer tokens and the API key header.
func CORS(origins []string, apiKeyHeader string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	headers := []string{"Authorization", "Content-Type", requestIDHeader}
	if apiKeyHeader != "" {
		headers = append(headers, apiKeyHeader)
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	return handler.Handler
}
