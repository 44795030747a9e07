package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"go-music-catalog/internal/middleware"
	"go-music-catalog/internal/model"
	"go-music-catalog/internal/service"
	"go-music-catalog/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apierror.New("PAYLOAD_TOO_LARGE", "request body too large", "", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			return apierror.BadRequest("request body is required", "")
		default:
			return apierror.BadRequest("invalid JSON body", "")
		}
	}
	return nil
}

// requestContext carries the client address down to the audit trail.
func requestContext(r *http.Request) context.Context {
	return service.WithClientIP(r.Context(), clientIP(r))
}

func principal(r *http.Request) (*model.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil, model.ErrUnauthorized
	}
	return p, nil
}

func clientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}

	return strings.TrimSpace(r.RemoteAddr)
}
