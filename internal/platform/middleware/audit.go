package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eyenotes/emr/internal/platform/auth"
)

// AuditEntry captures who touched which patient record, when, and how.
type AuditEntry struct {
	User       string
	PatientID  string
	Section    string
	Action     string // read, create, update, delete
	Path       string
	Method     string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries. Tests and alternative sinks provide
// their own implementation; without one the middleware only logs.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every access to patient data under /api/patients. Clinical
// records are health information, so reads are recorded as well as writes.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !strings.HasPrefix(path, "/api/patients") {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			entry := AuditEntry{
				User:       auth.CurrentUser(c),
				Path:       path,
				Method:     c.Request().Method,
				Action:     methodToAction(c.Request().Method),
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			entry.PatientID, entry.Section = parsePatientPath(path)
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "record_audit").
				Str("request_id", entry.RequestID).
				Str("user", entry.User).
				Str("patient_id", entry.PatientID).
				Str("section", entry.Section).
				Str("action", entry.Action).
				Int("status", entry.StatusCode).
				Msg("patient record access")

			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return "read"
	}
}

// parsePatientPath pulls the patient id and, for clinical note routes, the
// section kind out of paths like /api/patients/P758184/emr/diagnosis.
func parsePatientPath(path string) (patientID, section string) {
	parts := strings.Split(strings.TrimPrefix(path, "/api/patients"), "/")
	var fields []string
	for _, p := range parts {
		if p != "" {
			fields = append(fields, p)
		}
	}
	if len(fields) == 0 || fields[0] == "mr" {
		return "", ""
	}
	patientID = fields[0]
	if len(fields) >= 3 && fields[1] == "emr" {
		section = fields[2]
	}
	return patientID, section
}
