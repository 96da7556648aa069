package order

import (
	"errors"

	"github.com/corray333/food-delivery/internal/service/models/role"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusAccepted       Status = "Accepted"
	StatusPreparing      Status = "Preparing"
	StatusOutForDelivery Status = "OutForDelivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

var ErrInvalidStatus = errors.New("invalid order status")

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// transitions is the authoritative table of legal status edges.
var transitions = map[Status][]Status{
	StatusPending:        {StatusAccepted, StatusCancelled},
	StatusAccepted:       {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// statusRoles lists the roles permitted to move an order into each state.
var statusRoles = map[Status][]role.Role{
	StatusAccepted:       {role.RoleRestaurant, role.RoleAdmin, role.RoleDelivery},
	StatusPreparing:      {role.RoleRestaurant, role.RoleAdmin},
	StatusOutForDelivery: {role.RoleDelivery},
	StatusDelivered:      {role.RoleDelivery},
	StatusCancelled:      {role.RoleCustomer, role.RoleAdmin},
}

// CanTransitionTo reports whether the edge (s -> to) is in the table.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}

	return false
}

// Terminal reports whether the status has no outgoing edges.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// AllowedFor reports whether the role may move an order into status s.
func (s Status) AllowedFor(r role.Role) bool {
	for _, allowed := range statusRoles[s] {
		if allowed == r {
			return true
		}
	}

	return false
}
