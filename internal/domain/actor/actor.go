package actor

// Role identifies who is driving an operation. Buyer, seller and courier arrive
// via authenticated requests; System is reserved for internally triggered
// transitions (dispatch acceptance, the expiration sweep).
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleSeller  Role = "seller"
	RoleCourier Role = "courier"
	RoleSystem  Role = "system"
)

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the role may appear in an access token. System is
// deliberately excluded: it can never be claimed from the outside.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleCourier:
		return true
	default:
		return false
	}
}
