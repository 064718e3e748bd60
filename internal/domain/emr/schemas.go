package emr

import (
	"encoding/json"
	"fmt"
)

// EyePair is one value recorded separately for the right and left eye.
type EyePair struct {
	RE string `json:"re"`
	LE string `json:"le"`
}

func (p EyePair) blank() bool { return p.RE == "" && p.LE == "" }

// ComplaintsPayload is the complaints & ocular history note.
type ComplaintsPayload struct {
	PurposeOfVisit  string `json:"purposeOfVisit"`
	Notes           string `json:"notes"`
	OcularHistoryRE string `json:"ocularHistoryRE"`
	OcularHistoryLE string `json:"ocularHistoryLE"`
	HasSpectacles   string `json:"hasSpectacles"`
}

// SystemicCondition is one row of the systemic history list.
type SystemicCondition struct {
	Name       string `json:"name"`
	Duration   string `json:"duration"`
	Treatment  string `json:"treatment"`
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
}

func (c SystemicCondition) IsBlank() bool {
	return c.Name == "" && c.Duration == "" && c.Treatment == "" &&
		c.Medication == "" && c.Dosage == ""
}

// HistoryPayload is the systemic + spectacle history note.
type HistoryPayload struct {
	Conditions      []SystemicCondition `json:"conditions"`
	SpectacleUsage  string              `json:"spectacleUsage"`
	UsageDuration   string              `json:"usageDuration"`
	TypeOfSpectacle string              `json:"typeOfSpectacle"`
	LensDetails     string              `json:"lensDetails"`
	Condition       string              `json:"condition"`
}

// DisplayConditions drops all-blank rows for the saved view. Stored data is
// never filtered.
func (p HistoryPayload) DisplayConditions() []SystemicCondition {
	var rows []SystemicCondition
	for _, c := range p.Conditions {
		if !c.IsBlank() {
			rows = append(rows, c)
		}
	}
	return rows
}

// DiagnosisPayload is the final diagnosis list.
type DiagnosisPayload struct {
	Diagnoses []string `json:"diagnoses"`
}

// InvestigationEntry is one dated investigation row with per-eye values.
type InvestigationEntry struct {
	Name     string `json:"name"`
	REValue  string `json:"reValue"`
	LEValue  string `json:"leValue"`
	DateTime string `json:"dateTime"`
}

func (e InvestigationEntry) IsBlank() bool {
	return e.Name == "" && e.REValue == "" && e.LEValue == ""
}

// InvestigationPayload is the investigation results table.
type InvestigationPayload struct {
	Investigations []InvestigationEntry `json:"investigations"`
}

func (p InvestigationPayload) DisplayRows() []InvestigationEntry {
	var rows []InvestigationEntry
	for _, e := range p.Investigations {
		if !e.IsBlank() {
			rows = append(rows, e)
		}
	}
	return rows
}

// FundusExamPayload records the dilated fundus findings per eye.
type FundusExamPayload struct {
	Media                 EyePair              `json:"media"`
	Disc                  EyePair              `json:"disc"`
	Vessels               EyePair              `json:"vessels"`
	BackgroundRetina      EyePair              `json:"backgroundRetina"`
	Macula                EyePair              `json:"macula"`
	EyeDrawing            EyePair              `json:"eyeDrawing"`
	SpecialInvestigations []InvestigationEntry `json:"specialInvestigations"`
}

// AntSegmentExamPayload records the slit-lamp anterior segment findings.
type AntSegmentExamPayload struct {
	Lid             EyePair `json:"lid"`
	Conjunctiva     EyePair `json:"conjunctiva"`
	Cornea          EyePair `json:"cornea"`
	AnteriorChamber EyePair `json:"anteriorChamber"`
	Iris            EyePair `json:"iris"`
	Pupil           EyePair `json:"pupil"`
	Lens            EyePair `json:"lens"`
	OcularMovements EyePair `json:"ocularMovements"`
	CornealReflex   EyePair `json:"cornealReflex"`
	Globe           EyePair `json:"globe"`
	UndilatedFundus EyePair `json:"undilatedFundus"`
	EyeDrawing      EyePair `json:"eyeDrawing"`
}

// IsBlank reports whether no finding was entered for any field.
func (p AntSegmentExamPayload) IsBlank() bool {
	fields := []EyePair{
		p.Lid, p.Conjunctiva, p.Cornea, p.AnteriorChamber, p.Iris, p.Pupil,
		p.Lens, p.OcularMovements, p.CornealReflex, p.Globe, p.UndilatedFundus,
		p.EyeDrawing,
	}
	for _, f := range fields {
		if !f.blank() {
			return false
		}
	}
	return true
}

// SpectacleEntry is one current-spectacles record.
type SpectacleEntry struct {
	Usage           string `json:"usage"`
	Duration        string `json:"duration"`
	TypeOfSpectacle string `json:"typeOfSpectacle"`
	LensDetails     string `json:"lensDetails"`
	Condition       string `json:"condition"`
}

func (e SpectacleEntry) IsBlank() bool {
	return e.Usage == "" && e.Duration == "" && e.TypeOfSpectacle == "" &&
		e.LensDetails == "" && e.Condition == ""
}

// RefractionPayload is the spectacle history list.
type RefractionPayload struct {
	Spectacles []SpectacleEntry `json:"spectacles"`
}

func (p RefractionPayload) DisplayRows() []SpectacleEntry {
	var rows []SpectacleEntry
	for _, e := range p.Spectacles {
		if !e.IsBlank() {
			rows = append(rows, e)
		}
	}
	return rows
}

// DefaultPayload returns the blank form state for a section: empty fields,
// with one blank repeatable row where the form opens with one.
func DefaultPayload(kind SectionKind) interface{} {
	switch kind {
	case KindComplaints:
		return ComplaintsPayload{HasSpectacles: "No"}
	case KindHistory:
		return HistoryPayload{Conditions: []SystemicCondition{{}}}
	case KindDiagnosis:
		return DiagnosisPayload{Diagnoses: []string{}}
	case KindInvestigation:
		return InvestigationPayload{Investigations: []InvestigationEntry{{}}}
	case KindFundusExam:
		return FundusExamPayload{SpecialInvestigations: []InvestigationEntry{}}
	case KindAntSegmentExam:
		return AntSegmentExamPayload{}
	case KindRefraction:
		return RefractionPayload{Spectacles: []SpectacleEntry{}}
	}
	return nil
}

// DefaultPayloadJSON is DefaultPayload serialized, for callers that work
// with raw section data.
func DefaultPayloadJSON(kind SectionKind) json.RawMessage {
	data, _ := json.Marshal(DefaultPayload(kind))
	return data
}

// SchemaError reports section data that does not decode into the schema
// for its kind.
type SchemaError struct {
	Kind SectionKind
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("payload does not match %s schema: %v", e.Kind, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ValidatePayload checks that raw section data decodes into the schema for
// its kind.
func ValidatePayload(kind SectionKind, data json.RawMessage) error {
	var target interface{}
	switch kind {
	case KindComplaints:
		target = &ComplaintsPayload{}
	case KindHistory:
		target = &HistoryPayload{}
	case KindDiagnosis:
		target = &DiagnosisPayload{}
	case KindInvestigation:
		target = &InvestigationPayload{}
	case KindFundusExam:
		target = &FundusExamPayload{}
	case KindAntSegmentExam:
		target = &AntSegmentExamPayload{}
	case KindRefraction:
		target = &RefractionPayload{}
	default:
		return fmt.Errorf("unknown section kind %q", kind)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &SchemaError{Kind: kind, Err: err}
	}
	return nil
}
