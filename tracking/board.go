package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"deliveryfood/apiclient"
	"deliveryfood/models"
	"deliveryfood/statemachine"
)

var (
	ErrTerminalStatus = errors.New("order already delivered")
	ErrUnknownOrder   = errors.New("order not on this board")
)

// CourierBackend is what a courier board needs. *apiclient.Client implements it.
type CourierBackend interface {
	CourierOrders(ctx context.Context, courierID uint) ([]models.Order, error)
	AdvanceStatus(ctx context.Context, orderID uint) (*apiclient.StatusChange, error)
}

// CourierBoard is a courier's list of assigned orders.
type CourierBoard struct {
	backend   CourierBackend
	courierID uint
	log       *slog.Logger

	mu     sync.Mutex
	orders []models.Order
}

func NewCourierBoard(backend CourierBackend, courierID uint, log *slog.Logger) *CourierBoard {
	return &CourierBoard{backend: backend, courierID: courierID, log: log}
}

func (b *CourierBoard) Refresh(ctx context.Context) error {
	orders, err := b.backend.CourierOrders(ctx, b.courierID)
	if err != nil {
		return fmt.Errorf("refresh courier orders: %w", err)
	}
	b.mu.Lock()
	b.orders = orders
	b.mu.Unlock()
	return nil
}

func (b *CourierBoard) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.orders)
}

// Advance moves an order one step forward and reloads the board. A delivered
// order is left alone and ErrTerminalStatus returned without a request.
func (b *CourierBoard) Advance(ctx context.Context, orderID uint) (*apiclient.StatusChange, error) {
	b.mu.Lock()
	i := slices.IndexFunc(b.orders, func(o models.Order) bool { return o.ID == orderID })
	var status models.OrderStatus
	if i >= 0 {
		status = b.orders[i].Status
	}
	b.mu.Unlock()

	if i < 0 {
		return nil, ErrUnknownOrder
	}
	if _, ok := statemachine.Next(status); !ok {
		return nil, ErrTerminalStatus
	}

	change, err := b.backend.AdvanceStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("advance order %d: %w", orderID, err)
	}
	return change, b.Refresh(ctx)
}

// Watch refreshes the board every interval until ctx is done; onUpdate
// sees each successful refresh.
func (b *CourierBoard) Watch(ctx context.Context, interval time.Duration, onUpdate func([]models.Order)) error {
	p := &Poller{
		Interval: interval,
		Log:      b.log,
		Fetch: func(ctx context.Context) error {
			if err := b.Refresh(ctx); err != nil {
				return err
			}
			if onUpdate != nil {
				onUpdate(b.Orders())
			}
			return nil
		},
	}
	return p.Run(ctx)
}
