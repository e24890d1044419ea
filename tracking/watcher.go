package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"deliveryfood/models"
)

// HistoryBackend lists a customer's orders. *apiclient.Client implements it.
type HistoryBackend interface {
	OrderHistory(ctx context.Context, customerID uint) ([]models.Order, error)
}

// StatusUpdate is an order whose status differs from the previous poll.
type StatusUpdate struct {
	OrderID uint
	From    models.OrderStatus
	To      models.OrderStatus
}

// OrderWatcher follows a customer's order history.
type OrderWatcher struct {
	backend    HistoryBackend
	customerID uint
	log        *slog.Logger

	mu   sync.Mutex
	seen map[uint]models.OrderStatus
}

func NewOrderWatcher(backend HistoryBackend, customerID uint, log *slog.Logger) *OrderWatcher {
	return &OrderWatcher{backend: backend, customerID: customerID, log: log, seen: map[uint]models.OrderStatus{}}
}

// Poll fetches the history once and reports the orders whose status changed.
// New orders report an empty From.
func (w *OrderWatcher) Poll(ctx context.Context) ([]models.Order, []StatusUpdate, error) {
	orders, err := w.backend.OrderHistory(ctx, w.customerID)
	if err != nil {
		return nil, nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	var updates []StatusUpdate
	for _, o := range orders {
		if prev, ok := w.seen[o.ID]; !ok || prev != o.Status {
			updates = append(updates, StatusUpdate{OrderID: o.ID, From: prev, To: o.Status})
			w.seen[o.ID] = o.Status
		}
	}
	return orders, updates, nil
}

// Watch polls until ctx is done, calling onUpdate after every fetch.
func (w *OrderWatcher) Watch(ctx context.Context, interval time.Duration, onUpdate func([]models.Order, []StatusUpdate)) error {
	p := &Poller{
		Interval: interval,
		Log:      w.log,
		Fetch: func(ctx context.Context) error {
			orders, updates, err := w.Poll(ctx)
			if err != nil {
				return err
			}
			if onUpdate != nil {
				onUpdate(orders, updates)
			}
			return nil
		},
	}
	return p.Run(ctx)
}
