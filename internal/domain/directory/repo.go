package directory

type DoctorRepository interface {
	Upsert(d Doctor) Doctor
	Get(id string) (Doctor, error)
	Mutate(id string, fn func(Doctor) (Doctor, error)) (Doctor, error)
	List(filter DoctorFilter) []Doctor
}

type HospitalRepository interface {
	Upsert(h Hospital) Hospital
	Get(id string) (Hospital, error)
	List() []Hospital
}
