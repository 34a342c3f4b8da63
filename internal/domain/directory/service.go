package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebus/carebus/internal/platform/eventbus"
)

type Service struct {
	doctors   DoctorRepository
	hospitals HospitalRepository
	bus       eventbus.Publisher
}

func NewService(doctors DoctorRepository, hospitals HospitalRepository, bus eventbus.Publisher) *Service {
	return &Service{doctors: doctors, hospitals: hospitals, bus: bus}
}

// RegisterDoctor adds a doctor to the directory, defaulting to
// unavailable until the doctor declares otherwise.
func (s *Service) RegisterDoctor(ctx context.Context, d Doctor) (Doctor, error) {
	if d.FullName == "" {
		return Doctor{}, fmt.Errorf("full_name is required")
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Availability == "" {
		d.Availability = AvailabilityUnavailable
	}
	if !d.Availability.Valid() {
		return Doctor{}, fmt.Errorf("invalid availability state: %s", d.Availability)
	}
	d.CreatedAt = time.Now().UTC()
	return s.doctors.Upsert(d), nil
}

// SetAvailability records the doctor's declared state and refreshes the
// heartbeat. Every state is reachable from every other; the only failure
// modes are an unknown state value or an unknown doctor.
func (s *Service) SetAvailability(ctx context.Context, doctorID string, state Availability) (Doctor, error) {
	if !state.Valid() {
		return Doctor{}, fmt.Errorf("invalid availability state: %s", state)
	}

	doctor, err := s.doctors.Mutate(doctorID, func(d Doctor) (Doctor, error) {
		d.Availability = state
		d.LastHeartbeatAt = time.Now().UTC()
		return d, nil
	})
	if err != nil {
		return Doctor{}, err
	}

	s.bus.Publish(eventbus.TagDoctorAvailabilityUpdated, doctor)
	return doctor, nil
}

// GetDoctor returns one doctor by id.
func (s *Service) GetDoctor(ctx context.Context, id string) (Doctor, error) {
	return s.doctors.Get(id)
}

// ListDoctors returns doctors matching the filter.
func (s *Service) ListDoctors(ctx context.Context, filter DoctorFilter) []Doctor {
	return s.doctors.List(filter)
}

// AddHospital registers a facility.
func (s *Service) AddHospital(ctx context.Context, h Hospital) (Hospital, error) {
	if h.Name == "" {
		return Hospital{}, fmt.Errorf("name is required")
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return s.hospitals.Upsert(h), nil
}

// ListHospitals returns all facilities.
func (s *Service) ListHospitals(ctx context.Context) []Hospital {
	return s.hospitals.List()
}
