package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"deliveryfood/models"
	"deliveryfood/statemachine"
)

// Quote is the provisional order returned by a checkout preview.
type Quote struct {
	Items           []models.OrderItem `json:"items" validate:"required,min=1"`
	Subtotal        int64              `json:"subtotal" validate:"gte=0"`
	DeliveryFee     int64              `json:"deliveryFee" validate:"gte=0"`
	TotalPrice      int64              `json:"totalPrice" validate:"gte=0"`
	DeliveryAddress models.Address     `json:"deliveryAddress"`
}

// Report is revenue per period ("2006-01-02", "2006-01" or "2006" keys).
type Report struct {
	Type        string           `json:"type" validate:"required,oneof=daily monthly yearly"`
	Report      map[string]int64 `json:"report"`
	OrdersCount int              `json:"orders_count" validate:"gte=0"`
}

// StatusChange is the result of advancing an order.
type StatusChange struct {
	OrderID        uint               `json:"order_id" validate:"required"`
	PreviousStatus models.OrderStatus `json:"previous_status" validate:"required"`
	NewStatus      models.OrderStatus `json:"new_status" validate:"required"`
	Progress       int                `json:"progress" validate:"gte=0,lte=100"`
}

type checkoutBody struct {
	CartIDs []uint `json:"cartIds"`
}

func (c *Client) GetCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var out []models.CartLine
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/cart/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, menuID uint, quantity int) (*models.CartLine, error) {
	var out models.CartLine
	body := map[string]any{"menuId": menuID, "quantity": quantity}
	if err := c.doJSON(ctx, http.MethodPost, "/cart", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartQuantity(ctx context.Context, cartID uint, quantity int) (*models.CartLine, error) {
	var out models.CartLine
	body := map[string]int{"quantity": quantity}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/cart/%d", cartID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartLine(ctx context.Context, cartID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", cartID), nil, nil)
}

// PreviewOrder prices the given cart lines without placing an order.
func (c *Client) PreviewOrder(ctx context.Context, cartIDs []uint) (*Quote, error) {
	var out Quote
	if err := c.doJSON(ctx, http.MethodPost, "/orders/preview", checkoutBody{CartIDs: cartIDs}, &out); err != nil {
		return nil, err
	}
	if err := c.check(&out); err != nil {
		return nil, err
	}
	if out.TotalPrice != out.Subtotal+out.DeliveryFee {
		return nil, fmt.Errorf("%w: total %d != subtotal %d + fee %d",
			ErrInvalidResponse, out.TotalPrice, out.Subtotal, out.DeliveryFee)
	}
	return &out, nil
}

// CreateOrder places the order. Retrying with the same key returns the
// order created by the first attempt instead of a duplicate.
func (c *Client) CreateOrder(ctx context.Context, cartIDs []uint, idempotencyKey string) (*models.Order, error) {
	var headers []string
	if idempotencyKey != "" {
		headers = []string{IdempotencyKeyHeader, idempotencyKey}
	}
	var out models.Order
	if err := c.doJSON(ctx, http.MethodPost, "/orders/create", checkoutBody{CartIDs: cartIDs}, &out, headers...); err != nil {
		return nil, err
	}
	if err := checkOrder(out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderHistory(ctx context.Context, customerID uint) ([]models.Order, error) {
	return c.orders(ctx, fmt.Sprintf("/orders/customer/%d/history", customerID))
}

func (c *Client) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var out models.Order
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/get/%d", id), nil, &out); err != nil {
		return nil, err
	}
	if err := checkOrder(out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	return c.orders(ctx, "/orders/get")
}

// Reports fetches revenue grouped by "daily", "monthly" or "yearly".
func (c *Client) Reports(ctx context.Context, reportType string) (*Report, error) {
	var out Report
	if err := c.doJSON(ctx, http.MethodGet, "/orders/reports?type="+url.QueryEscape(reportType), nil, &out); err != nil {
		return nil, err
	}
	if err := c.check(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnassignedOrders(ctx context.Context) ([]models.Order, error) {
	return c.orders(ctx, "/courier-assignments/unassigned-orders")
}

func (c *Client) AvailableCouriers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/courier-assignments/available-couriers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssignCourier(ctx context.Context, orderID, courierID uint) (*models.Order, error) {
	var out models.Order
	path := fmt.Sprintf("/courier-assignments/assign/%d/%d", orderID, courierID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkOrder(out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdvanceStatus moves an order one step along its lifecycle.
func (c *Client) AdvanceStatus(ctx context.Context, orderID uint) (*StatusChange, error) {
	var out StatusChange
	path := fmt.Sprintf("/courier-assignments/update-status/%d", orderID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, &out); err != nil {
		return nil, err
	}
	if err := c.check(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CourierOrders(ctx context.Context, courierID uint) ([]models.Order, error) {
	return c.orders(ctx, fmt.Sprintf("/courier-assignments/courier-orders/%d", courierID))
}

func (c *Client) orders(ctx context.Context, path string) ([]models.Order, error) {
	var out []models.Order
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := checkOrder(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkOrder(o models.Order) error {
	if o.ID == 0 || !statemachine.Valid(o.Status) {
		return fmt.Errorf("%w: order %d has status %q", ErrInvalidResponse, o.ID, o.Status)
	}
	return nil
}
