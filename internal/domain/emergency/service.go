package emergency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebus/carebus/internal/platform/eventbus"
)

type Service struct {
	cases CaseRepository
	bus   eventbus.Publisher
}

func NewService(cases CaseRepository, bus eventbus.Publisher) *Service {
	return &Service{cases: cases, bus: bus}
}

// Create raises a new case and publishes its first snapshot.
func (s *Service) Create(ctx context.Context, in CreateInput, creatorID string) (Case, error) {
	if in.PatientID == "" {
		return Case{}, fmt.Errorf("patient_id is required")
	}

	now := time.Now().UTC()
	c := Case{
		ID:          uuid.New().String(),
		PatientID:   in.PatientID,
		HospitalID:  in.HospitalID,
		Description: in.Description,
		Status:      StatusRaised,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c = s.cases.Upsert(c)
	s.bus.Publish(eventbus.TagEmergencyCaseUpdated, c)
	return c, nil
}

// Advance applies one forward edge of the case state machine. An edge whose
// source state does not match the case's current state fails with
// *IllegalTransitionError and leaves the record unchanged; nothing is
// published on failure.
func (s *Service) Advance(ctx context.Context, id string, edge Edge) (Case, error) {
	t, ok := transitions[edge]
	if !ok {
		return Case{}, fmt.Errorf("unknown transition edge: %s", edge)
	}

	c, err := s.cases.Mutate(id, func(c Case) (Case, error) {
		if c.Status != t.from {
			return c, &IllegalTransitionError{Edge: edge, Current: c.Status}
		}
		c.Status = t.to
		c.UpdatedAt = time.Now().UTC()
		return c, nil
	})
	if err != nil {
		return Case{}, err
	}

	s.bus.Publish(eventbus.TagEmergencyCaseUpdated, c)
	return c, nil
}

// Get returns one case by id.
func (s *Service) Get(ctx context.Context, id string) (Case, error) {
	return s.cases.Get(id)
}

// List returns all cases ordered by creation time.
func (s *Service) List(ctx context.Context) []Case {
	return s.cases.List()
}
