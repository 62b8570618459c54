package constants

// Account roles
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"

	// Special role marker: any authenticated account
	RoleAny = "any"
)

// Role groups for convenience
var (
	StaffRoles       = []string{RoleDoctor, RoleAdmin}
	SelfServiceRoles = []string{RolePatient, RoleDoctor}
	AllRoles         = []string{RolePatient, RoleDoctor, RoleAdmin}
)
