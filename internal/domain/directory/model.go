package directory

import "time"

// Availability is a doctor's operator-declared availability signal. Any
// state may be set from any other at any time; this is not a state
// machine.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityOnCall      Availability = "on_call"
)

// Valid reports whether the value is one of the known availability states.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityOnCall:
		return true
	}
	return false
}

// Doctor is a registered practitioner in the directory.
type Doctor struct {
	ID              string       `json:"id"`
	FullName        string       `json:"full_name"`
	Specialty       string       `json:"specialty"`
	City            string       `json:"city"`
	Language        string       `json:"language"`
	HospitalID      string       `json:"hospital_id"`
	Availability    Availability `json:"availability"`
	LastHeartbeatAt time.Time    `json:"last_heartbeat_at"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (d Doctor) Key() string { return d.ID }

// Available reports whether the doctor is accepting patients right now.
func (d Doctor) Available() bool { return d.Availability == AvailabilityAvailable }

// Hospital is a facility in the directory. Read-only in this core.
type Hospital struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	City             string `json:"city"`
	Province         string `json:"province"`
	EmergencyEnabled bool   `json:"is_emergency_enabled"`
}

func (h Hospital) Key() string { return h.ID }

// DoctorFilter narrows a doctor listing. Zero values match everything.
type DoctorFilter struct {
	City         string
	Specialty    string
	Language     string
	AvailableNow *bool
}
