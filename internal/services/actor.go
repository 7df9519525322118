package services

// Actor is the authenticated caller, passed explicitly into every operation
// instead of being read from ambient request state.
type Actor struct {
	UserID int
	RoleID int
}
