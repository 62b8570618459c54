package account

// Column groups for partial updates. Counters owned by other writers (lockout state, rating,
// total_reviews) are only ever written by the statements that maintain them.
var (
	AddressColumns = []string{
		"address_street", "address_city", "address_state", "address_zip_code", "address_country",
	}
	EmergencyContactColumns = []string{"emergency_name", "emergency_phone", "emergency_relationship"}
	DoctorProfileColumns    = []string{
		"specialization", "experience", "education", "hospital", "city",
		"consultation_fee", "online_consultation", "offline_consultation",
	}
	LockoutColumns = []string{"failed_login_attempts", "locked_until", "last_failed_login_at"}
)
