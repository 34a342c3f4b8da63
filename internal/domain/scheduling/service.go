package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebus/carebus/internal/platform/eventbus"
	"github.com/carebus/carebus/internal/platform/idempotency"
)

type Service struct {
	appointments AppointmentRepository
	guard        *idempotency.Guard[Appointment]
	bus          eventbus.Publisher
}

func NewService(appointments AppointmentRepository, bus eventbus.Publisher) *Service {
	return &Service{
		appointments: appointments,
		guard:        idempotency.NewGuard[Appointment](),
		bus:          bus,
	}
}

// Create books an appointment. The idempotency key deduplicates retries:
// the first request to claim a key creates the record and reports
// isNew = true; every later (or concurrently racing) request with the same
// key receives the original record unchanged with isNew = false. The queue
// event is published once, by the creating request only.
func (s *Service) Create(ctx context.Context, in CreateInput, idempotencyKey, creatorID string) (Appointment, bool, error) {
	if idempotencyKey == "" {
		return Appointment{}, false, fmt.Errorf("idempotency key is required")
	}

	res := s.guard.Reserve(idempotencyKey)
	if !res.IsNew {
		return res.Existing, false, nil
	}

	now := time.Now().UTC()
	appt := Appointment{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		Status:         StatusBooked,
		DoctorID:       in.DoctorID,
		HospitalID:     in.HospitalID,
		Reason:         in.Reason,
		CreatedBy:      creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	appt = s.appointments.Upsert(appt)
	s.guard.Commit(idempotencyKey, appt)

	s.bus.Publish(eventbus.TagAppointmentQueueUpdated, appt)
	return appt, true, nil
}

// Cancel moves the appointment to cancelled. Cancelling an already
// cancelled appointment is a no-op returning the current record; the queue
// event is published only when the status actually changes.
func (s *Service) Cancel(ctx context.Context, id string) (Appointment, error) {
	changed := false
	appt, err := s.appointments.Mutate(id, func(a Appointment) (Appointment, error) {
		if a.Status == StatusCancelled {
			return a, nil
		}
		a.Status = StatusCancelled
		a.UpdatedAt = time.Now().UTC()
		changed = true
		return a, nil
	})
	if err != nil {
		return Appointment{}, err
	}

	if changed {
		s.bus.Publish(eventbus.TagAppointmentQueueUpdated, appt)
	}
	return appt, nil
}

// Get returns one appointment by id.
func (s *Service) Get(ctx context.Context, id string) (Appointment, error) {
	return s.appointments.Get(id)
}

// List returns all appointments ordered by creation time.
func (s *Service) List(ctx context.Context) []Appointment {
	return s.appointments.List()
}
