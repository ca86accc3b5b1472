package models

type Role string

const (
	RoleUser       Role = "USER"
	RoleStaff      Role = "STAFF"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

var roleRank = map[Role]int{
	RoleUser:       0,
	RoleStaff:      1,
	RoleManager:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Rank returns the position of r in the hierarchy, or -1 for unknown roles.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks the same as or above required.
// An unknown required role is never satisfied.
func (r Role) AtLeast(required Role) bool {
	need := required.Rank()
	if need < 0 {
		return false
	}
	return r.Rank() >= need
}
