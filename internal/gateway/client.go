// Package gateway is the REST client for the clinic API. Reads degrade to
// safe zero values so a flaky backend never blanks the queue screen; writes
// surface their errors so callers can keep unsaved work.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/eyenotes/emr/internal/domain/alert"
	"github.com/eyenotes/emr/internal/domain/emr"
	"github.com/eyenotes/emr/internal/domain/patient"
	"github.com/eyenotes/emr/internal/domain/visit"
)

type Client struct {
	http *resty.Client
	log  zerolog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient builds a client for the given base URL. No automatic retries:
// a replayed POST /patients would duplicate the registration.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, log: log}
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Login exchanges a username for a bearer token and stores it on the client
// for every later request.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var res loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&res).
		Post("/api/auth/login")
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("login: server returned %s", resp.Status())
	}

	c.mu.Lock()
	c.token = res.Token
	c.http.SetAuthToken(res.Token)
	c.mu.Unlock()
	return res.Name, nil
}

// UseToken restores a previously issued bearer token, such as one a CLI
// persisted between invocations.
func (c *Client) UseToken(token string) {
	c.mu.Lock()
	c.token = token
	c.http.SetAuthToken(token)
	c.mu.Unlock()
}

// Token returns the bearer token held, empty if not signed in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticated reports whether a login token is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

type listResponse struct {
	Data  []patient.Patient `json:"data"`
	Total int               `json:"total"`
}

// Patients fetches the full patient list. On any failure it logs a warning
// and returns nil so the caller can fall back to its local snapshot.
func (c *Client) Patients(ctx context.Context) []patient.Patient {
	var res listResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", "100").
		SetResult(&res).
		Get("/api/patients")
	if err != nil {
		c.log.Warn().Err(err).Msg("patient list fetch failed")
		return nil
	}
	if resp.IsError() {
		c.log.Warn().Str("status", resp.Status()).Msg("patient list fetch rejected")
		return nil
	}
	return res.Data
}

// Patient fetches one patient with visit history and alerts embedded.
// Returns nil when the patient is unknown or the backend is unreachable.
func (c *Client) Patient(ctx context.Context, id string) *PatientDetail {
	var res PatientDetail
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&res).
		Get("/api/patients/" + id)
	if err != nil {
		c.log.Warn().Err(err).Str("patient_id", id).Msg("patient fetch failed")
		return nil
	}
	if resp.IsError() {
		c.log.Warn().Str("status", resp.Status()).Str("patient_id", id).Msg("patient fetch rejected")
		return nil
	}
	return &res
}

// PatientDetail is the single-patient response shape.
type PatientDetail struct {
	patient.Patient
	VisitHistory  []VisitEntry `json:"visitHistory,omitempty"`
	MedicalAlerts []AlertEntry `json:"medicalAlerts,omitempty"`
}

type VisitEntry struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

type AlertEntry struct {
	AlertType  string `json:"alertType"`
	AlertValue string `json:"alertValue"`
}

// CheckMR looks up a patient by full MR number. A backend failure reads as
// "not found" so registration can proceed as a new patient.
func (c *Client) CheckMR(ctx context.Context, mrNumber string) *patient.MRResult {
	var res patient.MRResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&res).
		Get("/api/patients/mr/" + mrNumber)
	if err != nil {
		c.log.Warn().Err(err).Str("mr_number", mrNumber).Msg("mr lookup failed")
		return &patient.MRResult{Exists: false}
	}
	if resp.IsError() {
		c.log.Warn().Str("status", resp.Status()).Str("mr_number", mrNumber).Msg("mr lookup rejected")
		return &patient.MRResult{Exists: false}
	}
	return &res
}

// CreatePatient registers a patient. Unlike reads, a failure is returned:
// dropping a registration silently would lose the check-in.
func (c *Client) CreatePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	var created patient.Patient
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&created).
		Post("/api/patients")
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create patient: server returned %s: %s", resp.Status(), resp.String())
	}
	return &created, nil
}

func (c *Client) UpdatePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	var updated patient.Patient
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&updated).
		Put("/api/patients/" + p.ID)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("update patient: server returned %s: %s", resp.Status(), resp.String())
	}
	return &updated, nil
}

// Section fetches one clinical note. Any failure reads as "not saved yet";
// the form then opens blank rather than erroring.
func (c *Client) Section(ctx context.Context, patientID string, kind emr.SectionKind) *emr.SectionResult {
	var res emr.SectionResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&res).
		Get(fmt.Sprintf("/api/patients/%s/emr/%s", patientID, kind))
	if err != nil {
		c.log.Warn().Err(err).Str("patient_id", patientID).Str("section", string(kind)).Msg("section fetch failed")
		return &emr.SectionResult{Exists: false}
	}
	if resp.IsError() {
		c.log.Warn().Str("status", resp.Status()).Str("patient_id", patientID).Str("section", string(kind)).Msg("section fetch rejected")
		return &emr.SectionResult{Exists: false}
	}
	return &res
}

// SaveSection persists one clinical note. Failures are returned so the
// editor keeps its unsaved state.
func (c *Client) SaveSection(ctx context.Context, patientID string, kind emr.SectionKind, data json.RawMessage, author string) (*emr.SectionResult, error) {
	var res emr.SectionResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"data": data, "createdBy": author}).
		SetResult(&res).
		Post(fmt.Sprintf("/api/patients/%s/emr/%s", patientID, kind))
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", kind, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("save %s: server returned %s: %s", kind, resp.Status(), resp.String())
	}
	return &res, nil
}

func (c *Client) DeleteSection(ctx context.Context, patientID string, kind emr.SectionKind) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/patients/%s/emr/%s", patientID, kind))
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s: server returned %s", kind, resp.Status())
	}
	return nil
}

// Visits fetches a patient's visit history. On any failure it logs a
// warning and returns nil so the record view shows an empty history.
func (c *Client) Visits(ctx context.Context, patientID string) []visit.Visit {
	var res []visit.Visit
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&res).
		Get(fmt.Sprintf("/api/patients/%s/visits", patientID))
	if err != nil {
		c.log.Warn().Err(err).Str("patient_id", patientID).Msg("visit history fetch failed")
		return nil
	}
	if resp.IsError() {
		c.log.Warn().Str("status", resp.Status()).Str("patient_id", patientID).Msg("visit history fetch rejected")
		return nil
	}
	return res
}

// Alerts fetches a patient's active medical alerts, nil on any failure.
func (c *Client) Alerts(ctx context.Context, patientID string) []alert.MedicalAlert {
	var res []alert.MedicalAlert
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&res).
		Get(fmt.Sprintf("/api/patients/%s/alerts", patientID))
	if err != nil {
		c.log.Warn().Err(err).Str("patient_id", patientID).Msg("alert fetch failed")
		return nil
	}
	if resp.IsError() {
		c.log.Warn().Str("status", resp.Status()).Str("patient_id", patientID).Msg("alert fetch rejected")
		return nil
	}
	return res
}

// AddAlert records a new allergy or condition flag for a patient.
func (c *Client) AddAlert(ctx context.Context, patientID, alertType, alertValue string) (*alert.MedicalAlert, error) {
	var created alert.MedicalAlert
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"alertType": alertType, "alertValue": alertValue}).
		SetResult(&created).
		Post(fmt.Sprintf("/api/patients/%s/alerts", patientID))
	if err != nil {
		return nil, fmt.Errorf("add alert: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("add alert: server returned %s: %s", resp.Status(), resp.String())
	}
	return &created, nil
}

// LogVisit appends a visit row for a patient.
func (c *Client) LogVisit(ctx context.Context, patientID string, visit map[string]interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(visit).
		Post(fmt.Sprintf("/api/patients/%s/visits", patientID))
	if err != nil {
		return fmt.Errorf("log visit: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("log visit: server returned %s", resp.Status())
	}
	return nil
}
