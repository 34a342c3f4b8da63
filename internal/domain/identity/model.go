package identity

import "time"

// Roles carried in issued tokens. super_admin passes every role check.
const (
	RolePatient           = "patient"
	RoleDoctor            = "doctor"
	RoleHospitalAdmin     = "hospital_admin"
	RoleEmergencyOperator = "emergency_operator"
	RoleSuperAdmin        = "super_admin"
)

var validRoles = map[string]bool{
	RolePatient:           true,
	RoleDoctor:            true,
	RoleHospitalAdmin:     true,
	RoleEmergencyOperator: true,
	RoleSuperAdmin:        true,
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool { return validRoles[r] }

// User is an account that can authenticate. Phone numbers are unique.
// PasswordHash is a bcrypt hash and never serialized.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Key() string { return u.ID }
