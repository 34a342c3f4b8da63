package directory

import (
	"sort"
	"strings"

	"github.com/carebus/carebus/internal/platform/memstore"
)

// DoctorRepoMem is the in-memory DoctorRepository.
type DoctorRepoMem struct {
	coll *memstore.Collection[Doctor]
}

func NewDoctorRepoMem() *DoctorRepoMem {
	return &DoctorRepoMem{coll: memstore.NewCollection[Doctor]()}
}

func (r *DoctorRepoMem) Upsert(d Doctor) Doctor {
	return r.coll.Upsert(d)
}

func (r *DoctorRepoMem) Get(id string) (Doctor, error) {
	return r.coll.Get(id)
}

func (r *DoctorRepoMem) Mutate(id string, fn func(Doctor) (Doctor, error)) (Doctor, error) {
	return r.coll.Mutate(id, fn)
}

func (r *DoctorRepoMem) List(filter DoctorFilter) []Doctor {
	doctors := r.coll.List(func(d Doctor) bool {
		if filter.City != "" && !strings.EqualFold(d.City, filter.City) {
			return false
		}
		if filter.Specialty != "" && !strings.Contains(strings.ToLower(d.Specialty), strings.ToLower(filter.Specialty)) {
			return false
		}
		if filter.Language != "" && !strings.EqualFold(d.Language, filter.Language) {
			return false
		}
		if filter.AvailableNow != nil && d.Available() != *filter.AvailableNow {
			return false
		}
		return true
	})

	sort.Slice(doctors, func(i, j int) bool { return doctors[i].FullName < doctors[j].FullName })
	return doctors
}

// HospitalRepoMem is the in-memory HospitalRepository.
type HospitalRepoMem struct {
	coll *memstore.Collection[Hospital]
}

func NewHospitalRepoMem() *HospitalRepoMem {
	return &HospitalRepoMem{coll: memstore.NewCollection[Hospital]()}
}

func (r *HospitalRepoMem) Upsert(h Hospital) Hospital {
	return r.coll.Upsert(h)
}

func (r *HospitalRepoMem) Get(id string) (Hospital, error) {
	return r.coll.Get(id)
}

func (r *HospitalRepoMem) List() []Hospital {
	hospitals := r.coll.List(nil)
	sort.Slice(hospitals, func(i, j int) bool { return hospitals[i].Name < hospitals[j].Name })
	return hospitals
}
