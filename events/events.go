// Package events publishes order lifecycle notifications to a message broker.
package events

import (
	"context"
	"strconv"
	"sync"
	"time"

	"deliveryfood/models"
)

type Type string

const (
	OrderCreated    Type = "order.created"
	CourierAssigned Type = "order.assigned"
	StatusChanged   Type = "order.status_changed"
)

type Event struct {
	Type       Type               `json:"type"`
	OrderID    uint               `json:"orderId"`
	CustomerID uint               `json:"customerId"`
	CourierID  *uint              `json:"courierId,omitempty"`
	FromStatus models.OrderStatus `json:"fromStatus,omitempty"`
	Status     models.OrderStatus `json:"status"`
	TotalPrice int64              `json:"totalPrice"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Key is the partition/routing key; events of one order stay ordered.
func (e Event) Key() string {
	return strconv.FormatUint(uint64(e.OrderID), 10)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
