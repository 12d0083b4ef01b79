package scoring

const (
	RoleClinician  Role = "clinician"
	RoleDirector   Role = "director"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"

	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"

	MinKPIWeight = 1
	MaxKPIWeight = 20

	TopPerformerThreshold   = 90
	NeedsAttentionThreshold = 70

	// Trend deltas below this are reported as stable.
	TrendStableBelow = 2
)

func (r Role) Valid() bool {
	switch r {
	case RoleClinician, RoleDirector, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
