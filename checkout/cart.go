// Package checkout is the client-side cart: quantity edits written through
// to the server, line selection, and the two-step checkout.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"

	"deliveryfood/apiclient"
	"deliveryfood/models"
	"deliveryfood/receipt"
)

// User-facing messages.
const (
	MsgNotLoggedIn       = "You must log in before checking out."
	MsgNothingSelected   = "Please select at least one item to checkout."
	MsgAddressIncomplete = "Customer address is incomplete. Please fill in street, city, postal code and phone in your profile."
	MsgLoadFailed        = "Failed to load your cart. Please try again."
	MsgQuantityFailed    = "Failed to update quantity. Please try again."
	MsgRemoveFailed      = "Failed to remove item. Please try again."
	MsgCheckoutFailed    = "Checkout failed. Please try again."
	MsgOrderFailed       = "Failed to create order. Please try again."
	MsgConfirm           = "Please review your order and confirm."
)

var (
	ErrNotLoggedIn          = errors.New("not logged in")
	ErrNothingSelected      = errors.New("no cart line selected")
	ErrAddressIncomplete    = errors.New("delivery address incomplete")
	ErrQuantityBelowMinimum = errors.New("quantity must be at least 1")
	ErrLineNotFound         = errors.New("cart line not found")
	ErrNoPendingCheckout    = errors.New("no checkout to confirm")
)

// Backend is the part of the API the cart talks to. *apiclient.Client
// implements it.
type Backend interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetCart(ctx context.Context, userID uint) ([]models.CartLine, error)
	UpdateCartQuantity(ctx context.Context, cartID uint, quantity int) (*models.CartLine, error)
	RemoveCartLine(ctx context.Context, cartID uint) error
	PreviewOrder(ctx context.Context, cartIDs []uint) (*apiclient.Quote, error)
	CreateOrder(ctx context.Context, cartIDs []uint, idempotencyKey string) (*models.Order, error)
}

// Identity is the signed-in user as seen by the cart. *session.Store
// implements it.
type Identity interface {
	UserID() uint
	NotifyCartChanged()
}

// Pending is a previewed checkout waiting for confirmation. Its key is sent
// with every confirmation attempt so a retry cannot create a second order.
type Pending struct {
	Quote          apiclient.Quote
	CartIDs        []uint
	IdempotencyKey string
}

// Cart is safe for concurrent use. The lock is never held while a request
// is in flight.
type Cart struct {
	backend Backend
	who     Identity
	log     *slog.Logger

	mu       sync.Mutex
	customer models.User
	lines    []models.CartLine
	selected map[uint]bool
	issued   map[uint]uint64
	pending  *Pending
	message  string
}

func New(backend Backend, who Identity, log *slog.Logger) *Cart {
	return &Cart{
		backend:  backend,
		who:      who,
		log:      log,
		selected: map[uint]bool{},
		issued:   map[uint]uint64{},
	}
}

// Load fetches the customer's profile and cart lines. On failure the cart is
// left empty and a message is set.
func (c *Cart) Load(ctx context.Context) error {
	uid := c.who.UserID()
	if uid == 0 {
		c.reset(MsgNotLoggedIn)
		return ErrNotLoggedIn
	}

	user, err := c.backend.GetUser(ctx, uid)
	if err == nil {
		var lines []models.CartLine
		lines, err = c.backend.GetCart(ctx, uid)
		if err == nil {
			c.mu.Lock()
			c.customer = *user
			c.lines = lines
			for id := range c.selected {
				if c.indexLocked(id) < 0 {
					delete(c.selected, id)
				}
			}
			c.message = ""
			c.mu.Unlock()
			return nil
		}
	}

	c.log.Error("failed to load cart", "error", err, "user_id", uid)
	c.reset(MsgLoadFailed)
	return fmt.Errorf("load cart: %w", err)
}

func (c *Cart) reset(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.selected = map[uint]bool{}
	c.pending = nil
	c.message = msg
}

func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

func (c *Cart) Customer() models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customer
}

// Message is the last user-facing message, empty when there is none.
func (c *Cart) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Cart) indexLocked(cartID uint) int {
	return slices.IndexFunc(c.lines, func(l models.CartLine) bool { return l.ID == cartID })
}

// SetQuantity applies the new quantity locally and writes it through.
// Quantities below 1 are refused without a request. If the write fails the
// previous quantity is restored, unless a newer edit of the same line has
// been issued since; the newest edit always decides the line's state.
func (c *Cart) SetQuantity(ctx context.Context, cartID uint, quantity int) error {
	if quantity < 1 {
		return ErrQuantityBelowMinimum
	}

	c.mu.Lock()
	i := c.indexLocked(cartID)
	if i < 0 {
		c.mu.Unlock()
		return ErrLineNotFound
	}
	previous := c.lines[i].Quantity
	c.lines[i].Quantity = quantity
	c.issued[cartID]++
	seq := c.issued[cartID]
	c.mu.Unlock()

	_, err := c.backend.UpdateCartQuantity(ctx, cartID, quantity)

	c.mu.Lock()
	if c.issued[cartID] != seq {
		// superseded
		c.mu.Unlock()
		return err
	}
	if err != nil {
		if i := c.indexLocked(cartID); i >= 0 {
			c.lines[i].Quantity = previous
		}
		c.message = apiclient.MessageOf(err, MsgQuantityFailed)
		c.mu.Unlock()
		c.log.Error("failed to update cart quantity", "error", err, "cart_id", cartID, "quantity", quantity)
		return err
	}
	c.message = ""
	c.mu.Unlock()

	c.who.NotifyCartChanged()
	return nil
}

// Increment adds one to a line's quantity.
func (c *Cart) Increment(ctx context.Context, cartID uint) error {
	q, err := c.quantity(cartID)
	if err != nil {
		return err
	}
	return c.SetQuantity(ctx, cartID, q+1)
}

// Decrement removes one from a line's quantity; at 1 it is refused.
func (c *Cart) Decrement(ctx context.Context, cartID uint) error {
	q, err := c.quantity(cartID)
	if err != nil {
		return err
	}
	return c.SetQuantity(ctx, cartID, q-1)
}

func (c *Cart) quantity(cartID uint) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(cartID)
	if i < 0 {
		return 0, ErrLineNotFound
	}
	return c.lines[i].Quantity, nil
}

// Remove deletes a line optimistically. A 404 means it is already gone.
func (c *Cart) Remove(ctx context.Context, cartID uint) error {
	c.mu.Lock()
	i := c.indexLocked(cartID)
	if i < 0 {
		c.mu.Unlock()
		return ErrLineNotFound
	}
	line := c.lines[i]
	wasSelected := c.selected[cartID]
	c.lines = slices.Delete(c.lines, i, i+1)
	delete(c.selected, cartID)
	c.issued[cartID]++
	c.mu.Unlock()

	err := c.backend.RemoveCartLine(ctx, cartID)
	if err != nil && apiclient.StatusOf(err) != http.StatusNotFound {
		c.mu.Lock()
		c.lines = slices.Insert(c.lines, min(i, len(c.lines)), line)
		if wasSelected {
			c.selected[cartID] = true
		}
		c.message = apiclient.MessageOf(err, MsgRemoveFailed)
		c.mu.Unlock()
		c.log.Error("failed to remove cart line", "error", err, "cart_id", cartID)
		return err
	}

	c.who.NotifyCartChanged()
	return nil
}

// Toggle flips the selection of one line.
func (c *Cart) Toggle(cartID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(cartID) < 0 {
		return ErrLineNotFound
	}
	if c.selected[cartID] {
		delete(c.selected, cartID)
	} else {
		c.selected[cartID] = true
	}
	return nil
}

// SelectAll clears the selection when every line is selected, otherwise it
// selects every line.
func (c *Cart) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) > 0 && len(c.selected) == len(c.lines) {
		c.selected = map[uint]bool{}
		return
	}
	for _, l := range c.lines {
		c.selected[l.ID] = true
	}
}

// Selected returns the selected cart line ids in cart order.
func (c *Cart) Selected() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

func (c *Cart) selectedLocked() []uint {
	var ids []uint
	for _, l := range c.lines {
		if c.selected[l.ID] {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// Subtotal is Σ price × quantity over the selected lines.
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum int64
	for _, l := range c.lines {
		if c.selected[l.ID] {
			sum += l.LineTotal()
		}
	}
	return sum
}

// InitiateCheckout checks, in order, that a user is signed in, that at least
// one line is selected and that the profile address is complete. A failing
// check sets its message and sends nothing. Otherwise the server prices the
// selection and the quote is kept until Confirm or Cancel.
func (c *Cart) InitiateCheckout(ctx context.Context) (*apiclient.Quote, error) {
	c.mu.Lock()
	var guard error
	switch {
	case c.who.UserID() == 0:
		guard, c.message = ErrNotLoggedIn, MsgNotLoggedIn
	case len(c.selectedLocked()) == 0:
		guard, c.message = ErrNothingSelected, MsgNothingSelected
	case !c.customer.Address.Complete():
		guard, c.message = ErrAddressIncomplete, MsgAddressIncomplete
	}
	ids := c.selectedLocked()
	c.mu.Unlock()
	if guard != nil {
		return nil, guard
	}

	quote, err := c.backend.PreviewOrder(ctx, ids)
	if err != nil {
		c.mu.Lock()
		c.message = apiclient.MessageOf(err, MsgCheckoutFailed)
		c.mu.Unlock()
		c.log.Error("checkout preview failed", "error", err, "cart_ids", ids)
		return nil, err
	}

	c.mu.Lock()
	c.pending = &Pending{Quote: *quote, CartIDs: ids, IdempotencyKey: uuid.NewString()}
	c.message = MsgConfirm
	c.mu.Unlock()
	return quote, nil
}

// Pending returns the checkout awaiting confirmation, or nil.
func (c *Cart) Pending() *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	p.CartIDs = slices.Clone(p.CartIDs)
	return &p
}

// Cancel drops the pending checkout.
func (c *Cart) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.message = ""
}

// Confirm turns the pending checkout into an order. On success the
// checked-out lines leave the cart, the selection is cleared and the receipt
// is returned. On failure nothing changes, so Confirm can be retried with
// the same idempotency key.
func (c *Cart) Confirm(ctx context.Context) (*receipt.Receipt, error) {
	p := c.Pending()
	if p == nil {
		return nil, ErrNoPendingCheckout
	}

	order, err := c.backend.CreateOrder(ctx, p.CartIDs, p.IdempotencyKey)
	if err != nil {
		c.mu.Lock()
		c.message = apiclient.MessageOf(err, MsgOrderFailed)
		c.mu.Unlock()
		c.log.Error("order creation failed", "error", err, "cart_ids", p.CartIDs)
		return nil, err
	}

	c.mu.Lock()
	c.lines = slices.DeleteFunc(c.lines, func(l models.CartLine) bool {
		return slices.Contains(p.CartIDs, l.ID)
	})
	c.selected = map[uint]bool{}
	c.pending = nil
	c.message = fmt.Sprintf("Order #%d created successfully.", order.ID)
	r := receipt.FromOrder(*order, c.customer.Name)
	c.mu.Unlock()

	c.log.Info("order created", "order_id", order.ID, "total", order.TotalPrice)
	c.who.NotifyCartChanged()
	return &r, nil
}
