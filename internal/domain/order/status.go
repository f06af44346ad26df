package order

import (
	"pasarlink/internal/domain/actor"
)

// Status is the closed set of order lifecycle states. Unknown values are
// rejected at the boundary via ParseStatus instead of being carried along.
type Status string

const (
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusDeliveryRequested Status = "delivery_requested"
	StatusAssigned          Status = "assigned"
	StatusPickedUp          Status = "picked_up"
	StatusInTransit         Status = "in_transit"
	StatusDelivered         Status = "delivered"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeliveryRequested, StatusAssigned,
		StatusPickedUp, StatusInTransit, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// transitions is the single source of truth for the lifecycle graph: which
// target states are reachable from each state, and which actors may drive the
// move. Status only moves forward along this graph or to cancelled.
var transitions = map[Status]map[Status][]actor.Role{
	StatusPending: {
		StatusConfirmed: {actor.RoleSeller},
		StatusCancelled: {actor.RoleBuyer, actor.RoleSeller, actor.RoleSystem},
	},
	StatusConfirmed: {
		StatusDeliveryRequested: {actor.RoleSeller},
		StatusCancelled:         {actor.RoleBuyer, actor.RoleSeller, actor.RoleSystem},
	},
	StatusDeliveryRequested: {
		StatusAssigned:  {actor.RoleSystem},
		StatusCancelled: {actor.RoleBuyer, actor.RoleSeller, actor.RoleSystem},
	},
	StatusAssigned: {
		StatusPickedUp:  {actor.RoleCourier},
		StatusCancelled: {actor.RoleSeller, actor.RoleSystem},
	},
	StatusPickedUp: {
		StatusInTransit: {actor.RoleCourier},
		StatusCancelled: {actor.RoleSeller, actor.RoleSystem},
	},
	StatusInTransit: {
		StatusDelivered: {actor.RoleCourier},
		StatusCancelled: {actor.RoleSeller, actor.RoleSystem},
	},
	StatusDelivered: {
		StatusCompleted: {actor.RoleBuyer, actor.RoleSystem},
		StatusCancelled: {actor.RoleSystem},
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether the lifecycle graph has an edge from one status
// to another, regardless of actor.
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// AllowedActors returns the roles permitted to drive a given transition, or nil
// when no such edge exists.
func AllowedActors(from, to Status) []actor.Role {
	return transitions[from][to]
}

func actorAllowed(from, to Status, role actor.Role) bool {
	for _, allowed := range transitions[from][to] {
		if allowed == role {
			return true
		}
	}
	return false
}
