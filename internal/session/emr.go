package session

import (
	"context"
	"encoding/json"

	"github.com/eyenotes/emr/internal/domain/emr"
)

// SectionClient is the slice of the clinic API a section session needs.
type SectionClient interface {
	Section(ctx context.Context, patientID string, kind emr.SectionKind) *emr.SectionResult
	SaveSection(ctx context.Context, patientID string, kind emr.SectionKind, data json.RawMessage, author string) (*emr.SectionResult, error)
}

type sectionSource struct {
	client    SectionClient
	patientID string
	kind      emr.SectionKind
}

func (s *sectionSource) Load(ctx context.Context) (json.RawMessage, Meta) {
	res := s.client.Section(ctx, s.patientID, s.kind)
	if res == nil || !res.Exists {
		return nil, Meta{}
	}
	return res.Data, Meta{Exists: true, Author: res.CreatedBy, SavedAt: res.UpdatedAt}
}

func (s *sectionSource) Save(ctx context.Context, value json.RawMessage, author string) error {
	if err := emr.ValidatePayload(s.kind, value); err != nil {
		return err
	}
	_, err := s.client.SaveSection(ctx, s.patientID, s.kind, value, author)
	return err
}

// NewSectionSession builds a session over one clinical note, with the
// section's blank form as the default value.
func NewSectionSession(client SectionClient, patientID string, kind emr.SectionKind) *Session[json.RawMessage] {
	return New[json.RawMessage](
		&sectionSource{client: client, patientID: patientID, kind: kind},
		func() json.RawMessage { return emr.DefaultPayloadJSON(kind) },
	)
}
