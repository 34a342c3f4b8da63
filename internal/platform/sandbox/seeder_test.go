package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carebus/carebus/internal/domain/directory"
	"github.com/carebus/carebus/internal/domain/identity"
	"github.com/carebus/carebus/internal/platform/auth"
	"github.com/carebus/carebus/internal/platform/eventbus"
)

type nopPublisher struct{}

func (nopPublisher) Publish(eventbus.Tag, interface{}) {}

func newSeededServices(t *testing.T, doctorCount int) (*identity.Service, *directory.Service) {
	t.Helper()

	tokens := auth.NewManager([]byte("test-secret"), time.Hour)
	idSvc := identity.NewService(identity.NewUserRepoMem(), tokens)
	dirSvc := directory.NewService(directory.NewDoctorRepoMem(), directory.NewHospitalRepoMem(), nopPublisher{})

	s := New(idSvc, dirSvc, 42, zerolog.Nop())
	if err := s.Run(context.Background(), doctorCount); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return idSvc, dirSvc
}

func TestRun(t *testing.T) {
	idSvc, dirSvc := newSeededServices(t, 10)
	ctx := context.Background()

	// One account per role, all able to log in with the demo password.
	for _, phone := range []string{"+923000000001", "+923000000002", "+923000000003", "+923000000004", "+923000000005"} {
		if _, _, err := idSvc.Login(ctx, phone, demoPassword); err != nil {
			t.Errorf("login %s: %v", phone, err)
		}
	}

	hospitals := dirSvc.ListHospitals(ctx)
	if len(hospitals) != 2 {
		t.Fatalf("expected 2 hospitals, got %d", len(hospitals))
	}

	doctors := dirSvc.ListDoctors(ctx, directory.DoctorFilter{})
	if len(doctors) != 10 {
		t.Fatalf("expected 10 doctors, got %d", len(doctors))
	}
	for _, d := range doctors {
		if d.HospitalID == "" {
			t.Errorf("doctor %s not assigned to a hospital", d.FullName)
		}
		if !d.Availability.Valid() {
			t.Errorf("doctor %s has invalid availability %s", d.FullName, d.Availability)
		}
	}
}

func TestRun_Reproducible(t *testing.T) {
	_, dirA := newSeededServices(t, 5)
	_, dirB := newSeededServices(t, 5)
	ctx := context.Background()

	a := dirA.ListDoctors(ctx, directory.DoctorFilter{})
	b := dirB.ListDoctors(ctx, directory.DoctorFilter{})
	if len(a) != len(b) {
		t.Fatalf("doctor counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].FullName != b[i].FullName || a[i].Specialty != b[i].Specialty {
			t.Errorf("doctor %d differs across identically seeded runs: %q vs %q", i, a[i].FullName, b[i].FullName)
		}
	}
}
