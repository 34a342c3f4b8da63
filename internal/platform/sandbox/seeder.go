// Package sandbox seeds demo data for development and demo environments:
// a fixed set of login accounts, two reference hospitals, and a
// configurable number of generated doctors.
package sandbox

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"github.com/carebus/carebus/internal/domain/directory"
	"github.com/carebus/carebus/internal/domain/identity"
)

// demoPassword is shared by all seeded accounts. Demo environments only.
const demoPassword = "password123"

var demoAccounts = []identity.RegisterInput{
	{FullName: "Demo Patient", Phone: "+923000000001", Role: identity.RolePatient},
	{FullName: "Demo Doctor", Phone: "+923000000002", Role: identity.RoleDoctor},
	{FullName: "Demo Hospital Admin", Phone: "+923000000003", Role: identity.RoleHospitalAdmin},
	{FullName: "Demo Emergency Operator", Phone: "+923000000004", Role: identity.RoleEmergencyOperator},
	{FullName: "Demo Super Admin", Phone: "+923000000005", Role: identity.RoleSuperAdmin},
}

var demoHospitals = []directory.Hospital{
	{Name: "Jinnah Hospital", City: "Karachi", Province: "Sindh", EmergencyEnabled: true},
	{Name: "Mayo Hospital", City: "Lahore", Province: "Punjab", EmergencyEnabled: true},
}

var specialties = []string{
	"Cardiology", "General Medicine", "Pediatrics", "Orthopedics",
	"Neurology", "Dermatology", "Gynecology", "ENT",
}

var languages = []string{"Urdu", "English", "Punjabi", "Sindhi", "Pashto"}

var availabilityStates = []directory.Availability{
	directory.AvailabilityAvailable,
	directory.AvailabilityUnavailable,
	directory.AvailabilityOnCall,
}

// Seeder populates the identity and directory services with demo data.
type Seeder struct {
	identity  *identity.Service
	directory *directory.Service
	faker     *gofakeit.Faker
	logger    zerolog.Logger
}

// New creates a Seeder. The seed makes generated doctors reproducible
// across restarts.
func New(id *identity.Service, dir *directory.Service, seed uint64, logger zerolog.Logger) *Seeder {
	return &Seeder{
		identity:  id,
		directory: dir,
		faker:     gofakeit.New(int64(seed)),
		logger:    logger.With().Str("component", "sandbox").Logger(),
	}
}

// Run seeds the demo accounts, hospitals, and doctorCount generated
// doctors. Seeding is additive and intended for a fresh in-memory store.
func (s *Seeder) Run(ctx context.Context, doctorCount int) error {
	for _, in := range demoAccounts {
		in.Password = demoPassword
		if _, err := s.identity.Register(ctx, in); err != nil {
			return fmt.Errorf("seed account %s: %w", in.Phone, err)
		}
	}
	s.logger.Info().Int("accounts", len(demoAccounts)).Msg("seeded demo accounts")

	hospitals := make([]directory.Hospital, 0, len(demoHospitals))
	for _, h := range demoHospitals {
		created, err := s.directory.AddHospital(ctx, h)
		if err != nil {
			return fmt.Errorf("seed hospital %s: %w", h.Name, err)
		}
		hospitals = append(hospitals, created)
	}

	for i := 0; i < doctorCount; i++ {
		hospital := hospitals[i%len(hospitals)]
		doctor := directory.Doctor{
			FullName:     "Dr. " + s.faker.Name(),
			Specialty:    specialties[s.faker.Number(0, len(specialties)-1)],
			City:         hospital.City,
			Language:     languages[s.faker.Number(0, len(languages)-1)],
			HospitalID:   hospital.ID,
			Availability: availabilityStates[s.faker.Number(0, len(availabilityStates)-1)],
		}
		if _, err := s.directory.RegisterDoctor(ctx, doctor); err != nil {
			return fmt.Errorf("seed doctor %d: %w", i, err)
		}
	}
	s.logger.Info().
		Int("hospitals", len(hospitals)).
		Int("doctors", doctorCount).
		Msg("seeded directory")
	return nil
}
