package scheduling

// AppointmentRepository is the storage contract for appointments.
type AppointmentRepository interface {
	Upsert(a Appointment) Appointment
	Get(id string) (Appointment, error)
	Mutate(id string, fn func(Appointment) (Appointment, error)) (Appointment, error)
	List() []Appointment
}
