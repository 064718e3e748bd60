package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestAudit_RecordsPatientAccess(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/patients/P758184/emr/diagnosis", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-abc")

	var got AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		got = entry
		return nil
	})

	logger := zerolog.New(os.Stderr)
	handler := func(c echo.Context) error {
		return c.String(http.StatusCreated, "ok")
	}

	if err := Audit(logger, recorder)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.PatientID != "P758184" {
		t.Errorf("expected patient P758184, got %q", got.PatientID)
	}
	if got.Section != "diagnosis" {
		t.Errorf("expected section diagnosis, got %q", got.Section)
	}
	if got.Action != "create" {
		t.Errorf("expected action create, got %q", got.Action)
	}
	if got.RequestID != "req-abc" {
		t.Errorf("expected request id req-abc, got %q", got.RequestID)
	}
}

func TestAudit_SkipsNonPatientPaths(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		called = true
		return nil
	})

	logger := zerolog.New(os.Stderr)
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	if err := Audit(logger, recorder)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected no audit entry for /health")
	}
}

func TestParsePatientPath(t *testing.T) {
	cases := []struct {
		path    string
		patient string
		section string
	}{
		{"/api/patients", "", ""},
		{"/api/patients/P758184", "P758184", ""},
		{"/api/patients/P758184/visits", "P758184", ""},
		{"/api/patients/P758184/emr/refraction", "P758184", "refraction"},
		{"/api/patients/mr/758184", "", ""},
	}
	for _, tc := range cases {
		patient, section := parsePatientPath(tc.path)
		if patient != tc.patient || section != tc.section {
			t.Errorf("%s: got (%q,%q), want (%q,%q)", tc.path, patient, section, tc.patient, tc.section)
		}
	}
}
