package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubDetail struct{}

func (stubDetail) VisitHistory(_ context.Context, _ string) (interface{}, error) {
	return []map[string]string{{"date": "16-Dec-25", "location": "CHN"}}, nil
}

func (stubDetail) ActiveAlerts(_ context.Context, _ string) (interface{}, error) {
	return []map[string]string{{"alertType": "allergy", "alertValue": "Penicillin"}}, nil
}

func seedHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc := NewService(newMockRepo())
	return NewHandler(svc, stubDetail{}), svc
}

func TestCreatePatient_ThenGet(t *testing.T) {
	e := echo.New()
	h, _ := seedHandler(t)

	body := `{"mrNumber":"758184","name":"Hari Prasad","age":35,"city":"Chennai"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patients/"+created.ID, nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"visitHistory"`) {
		t.Error("expected visitHistory in detail response")
	}
	if !strings.Contains(rec.Body.String(), `"medicalAlerts"`) {
		t.Error("expected medicalAlerts in detail response")
	}
}

func TestCreatePatient_MissingRequiredFields(t *testing.T) {
	e := echo.New()
	h, _ := seedHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/patients",
		strings.NewReader(`{"name":"No MR"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreatePatient(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	e := echo.New()
	h, _ := seedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/patients/P999999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P999999")

	err := h.GetPatient(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCheckMR_Handler(t *testing.T) {
	e := echo.New()
	h, svc := seedHandler(t)

	p := &Patient{MRNumber: "992831", Name: "Avik Dey Sarkar", Age: 16}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/patients/mr/992831", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("mrNumber")
	c.SetParamValues("992831")

	if err := h.CheckMR(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result MRResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !result.Exists || result.Patient.Name != "Avik Dey Sarkar" {
		t.Errorf("unexpected MR result: %+v", result)
	}
}

func TestUpdatePatient_RoundTrip(t *testing.T) {
	e := echo.New()
	h, svc := seedHandler(t)

	p := &Patient{MRNumber: "758184", Name: "Hari Prasad", Age: 35}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{"mrNumber":"758184","name":"Hari Prasad","age":36,"status":"In Consultation"}`
	req := httptest.NewRequest(http.MethodPut, "/api/patients/"+p.ID, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	updated, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Age != 36 || updated.Status != "In Consultation" {
		t.Errorf("update not applied: %+v", updated)
	}
}
