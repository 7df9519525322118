package authz

const (
	RoleResearcher = 10
	RoleLead       = 20
	RoleGatekeeper = 30
	RolePortfolio  = 40
	RoleAdmin      = 50
	RoleAuditor    = 60
)

// IsElevated reports whether the role sees and manages every project.
func IsElevated(roleID int) bool {
	return roleID == RolePortfolio || roleID == RoleAdmin
}

// CanGatekeep reports whether the role may assign reviewers and force gate
// decisions (including the final-decision override).
func CanGatekeep(roleID int) bool {
	return roleID == RoleGatekeeper || roleID == RolePortfolio || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAuditor
}
