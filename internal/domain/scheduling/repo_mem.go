package scheduling

import (
	"sort"

	"github.com/carebus/carebus/internal/platform/memstore"
)

// AppointmentRepoMem is the in-memory AppointmentRepository.
type AppointmentRepoMem struct {
	coll *memstore.Collection[Appointment]
}

func NewAppointmentRepoMem() *AppointmentRepoMem {
	return &AppointmentRepoMem{coll: memstore.NewCollection[Appointment]()}
}

func (r *AppointmentRepoMem) Upsert(a Appointment) Appointment {
	return r.coll.Upsert(a)
}

func (r *AppointmentRepoMem) Get(id string) (Appointment, error) {
	return r.coll.Get(id)
}

func (r *AppointmentRepoMem) Mutate(id string, fn func(Appointment) (Appointment, error)) (Appointment, error) {
	return r.coll.Mutate(id, fn)
}

func (r *AppointmentRepoMem) List() []Appointment {
	appointments := r.coll.List(nil)
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].CreatedAt.Before(appointments[j].CreatedAt)
	})
	return appointments
}
