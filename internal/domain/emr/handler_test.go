package emr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() *Handler {
	return NewHandler(NewService(newMockRepo()))
}

func sectionRequest(e *echo.Echo, method, patientID, section, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/patients/"+patientID+"/emr/"+section, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "section")
	c.SetParamValues(patientID, section)
	return c, rec
}

func TestGetSection_NotYetSaved(t *testing.T) {
	e := echo.New()
	h := newTestHandler()

	c, rec := sectionRequest(e, http.MethodGet, "P758184", "diagnosis", "")
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res SectionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Exists {
		t.Error("expected exists=false before any save")
	}
}

func TestSaveSection_ThenGet(t *testing.T) {
	e := echo.New()
	h := newTestHandler()

	body := `{"data":{"diagnoses":["RE POAG"]},"createdBy":"Dr. Chris Diana Pius"}`
	c, rec := sectionRequest(e, http.MethodPost, "P758184", "diagnosis", body)
	if err := h.Save(c); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = sectionRequest(e, http.MethodGet, "P758184", "diagnosis", "")
	if err := h.Get(c); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var res SectionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !res.Exists {
		t.Fatal("expected exists=true after save")
	}
	if res.CreatedBy != "Dr. Chris Diana Pius" {
		t.Errorf("unexpected author: %s", res.CreatedBy)
	}
	var got DiagnosisPayload
	if err := json.Unmarshal(res.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(got.Diagnoses) != 1 || got.Diagnoses[0] != "RE POAG" {
		t.Errorf("unexpected diagnoses: %v", got.Diagnoses)
	}
}

func TestSaveSection_UnknownKind(t *testing.T) {
	e := echo.New()
	h := newTestHandler()

	c, _ := sectionRequest(e, http.MethodPost, "P758184", "vitals", `{"data":{}}`)
	err := h.Save(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestSaveSection_SchemaMismatch(t *testing.T) {
	e := echo.New()
	h := newTestHandler()

	c, _ := sectionRequest(e, http.MethodPost, "P758184", "diagnosis", `{"data":{"diagnoses":"oops"}}`)
	err := h.Save(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAllSections(t *testing.T) {
	e := echo.New()
	h := newTestHandler()

	c, _ := sectionRequest(e, http.MethodPost, "P758184", "complaints", `{"data":{"purposeOfVisit":"Blurred vision","hasSpectacles":"Yes"}}`)
	if err := h.Save(c); err != nil {
		t.Fatalf("save complaints: %v", err)
	}
	c, _ = sectionRequest(e, http.MethodPost, "P758184", "diagnosis", `{"data":{"diagnoses":["RE POAG"]}}`)
	if err := h.Save(c); err != nil {
		t.Fatalf("save diagnosis: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/patients/P758184/emr", nil)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P758184")
	if err := h.All(c); err != nil {
		t.Fatalf("all failed: %v", err)
	}

	var body struct {
		Sections map[SectionKind]*SectionResult `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(body.Sections))
	}
}

func TestDeleteSection(t *testing.T) {
	e := echo.New()
	h := newTestHandler()

	c, _ := sectionRequest(e, http.MethodPost, "P758184", "diagnosis", `{"data":{"diagnoses":["RE POAG"]}}`)
	if err := h.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	c, rec := sectionRequest(e, http.MethodDelete, "P758184", "diagnosis", "")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = sectionRequest(e, http.MethodDelete, "P758184", "diagnosis", "")
	err := h.Delete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}
