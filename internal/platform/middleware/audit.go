package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carelink/hms/internal/platform/auth"
)

// AccessEntry captures who accessed what, when, from where, and the outcome.
type AccessEntry struct {
	UserID     string
	UserRole   string
	Action     string // read, create, update, delete
	Resource   string
	ResourceID string
	Status     string // success, failure
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AccessRecorder persists access entries. Decoupling the middleware from the
// concrete audit service lets tests provide a mock implementation.
type AccessRecorder interface {
	RecordAccess(ctx context.Context, entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(ctx context.Context, entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(ctx context.Context, entry AccessEntry) error {
	return f(ctx, entry)
}

// Audit returns Echo middleware that records every /api/v1/* request to the
// access trail: the authenticated actor, the resource touched, and the
// response outcome. Recorder failures are logged, never surfaced, so a broken
// trail does not take the API down with it.
func Audit(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isAuditablePath(path) {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			entry := AccessEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
			}

			ctx := req.Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.UserRole = auth.RoleFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			entry.Action = httpMethodToAction(req.Method)
			entry.Resource, entry.ResourceID = splitResourcePath(path)

			entry.Status = "success"
			if err != nil || entry.StatusCode >= http.StatusBadRequest {
				entry.Status = "failure"
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(ctx, entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record access entry")
				}
			}

			logger.Info().
				Str("type", "access_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("user_role", entry.UserRole).
				Str("action", entry.Action).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("status", entry.Status).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status_code", entry.StatusCode).
				Msg("api_access")

			return err
		}
	}
}

// isAuditablePath returns true if the path is under /api/v1/.
func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/")
}

// httpMethodToAction maps HTTP methods to audit action codes.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// splitResourcePath extracts the resource name and, when present, the
// resource id from an /api/v1/<resource>/<id> path. Trailing action segments
// such as "read" or "read-all" are not ids and are ignored.
func splitResourcePath(path string) (resource, id string) {
	trimmed := strings.TrimPrefix(path, "/api/v1/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", ""
	}
	resource = parts[0]
	if len(parts) > 1 && looksLikeID(parts[1]) {
		id = parts[1]
	}
	return resource, id
}

func looksLikeID(s string) bool {
	// uuid-shaped segments only; route verbs like "read-all" are shorter.
	return len(s) == 36 && strings.Count(s, "-") == 4
}
