package models

// Roles that may author pricing rules.
const (
	RoleSuperAdmin     = "super_admin"
	RoleFranchiseAdmin = "franchise_admin"
	RoleStaff          = "staff"
	RoleReadonly       = "readonly"
)

// Principal is the authenticated caller extracted from the JWT.
type Principal struct {
	UserID      string `json:"user_id"`
	FranchiseID string `json:"franchise_id"`
	Role        string `json:"role"`
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}
