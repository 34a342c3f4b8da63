package scheduling

import "time"

// Status is the appointment lifecycle state. The machine is monotonic:
// booked advances to cancelled and cancelled is terminal.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

// Appointment is a booking created by a patient against a doctor. The
// idempotency key is unique across all appointments; a retried creation
// request carrying the same key returns the original record unchanged.
type Appointment struct {
	ID             string    `json:"id"`
	IdempotencyKey string    `json:"idempotencyKey"`
	Status         Status    `json:"status"`
	DoctorID       string    `json:"doctorId,omitempty"`
	HospitalID     string    `json:"hospitalId,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (a Appointment) Key() string { return a.ID }

// CreateInput carries the caller-supplied booking fields.
type CreateInput struct {
	DoctorID   string `json:"doctorId"`
	HospitalID string `json:"hospitalId"`
	Reason     string `json:"reason"`
}
