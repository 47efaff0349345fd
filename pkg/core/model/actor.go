package model

// Actor is the authenticated caller of a use case as identified by
// its access token.
type Actor struct {
	UserID int64
	Admin  bool
}

// CanAccess reports if the actor may read or change a resource which
// belongs to the ownerID user. Admins may access all resources.
func (a Actor) CanAccess(ownerID int64) bool {
	return a.Admin || a.UserID == ownerID
}
