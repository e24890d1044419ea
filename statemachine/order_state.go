package statemachine

import (
	"fmt"
	"strings"

	"deliveryfood/models"
)

// Actor names who is allowed to perform a transition
type Actor string

const (
	ActorAdmin   Actor = "admin"
	ActorCourier Actor = "courier"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// Lifecycle is the fixed forward-only order of statuses.
var Lifecycle = []models.OrderStatus{
	models.StatusPending,
	models.StatusAssigned,
	models.StatusPickedUp,
	models.StatusOnDelivery,
	models.StatusDelivered,
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Admin pairs the order with a courier
	{From: models.StatusPending, To: models.StatusAssigned, Actor: ActorAdmin},
	// Courier walks the order to the customer
	{From: models.StatusAssigned, To: models.StatusPickedUp, Actor: ActorCourier},
	{From: models.StatusPickedUp, To: models.StatusOnDelivery, Actor: ActorCourier},
	{From: models.StatusOnDelivery, To: models.StatusDelivered, Actor: ActorCourier},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// Valid reports whether s is a known status.
func Valid(s models.OrderStatus) bool {
	return Index(s) >= 0
}

// Index returns the position of s in the lifecycle, or -1.
func Index(s models.OrderStatus) int {
	for i, st := range Lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the single forward transition from s. ok is false for
// DELIVERED and for unknown statuses.
func Next(s models.OrderStatus) (next models.OrderStatus, ok bool) {
	i := Index(s)
	if i < 0 || i == len(Lifecycle)-1 {
		return "", false
	}
	return Lifecycle[i+1], true
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered
}

// Progress is the completed fraction of the lifecycle in percent.
func Progress(s models.OrderStatus) int {
	i := Index(s)
	if i < 0 {
		return 0
	}
	return i * 100 / (len(Lifecycle) - 1)
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
