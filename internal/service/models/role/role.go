package role

import "errors"

// Role is the caller role resolved by the auth collaborator.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleDelivery   Role = "delivery"
)

var ErrInvalidRole = errors.New("invalid role")

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCustomer, RoleRestaurant, RoleDelivery:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// Actor is an authenticated caller.
type Actor struct {
	UserID int64
	Role   Role
}
