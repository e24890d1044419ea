package handlers

import (
	"errors"
	"net/http"
	"time"

	"deliveryfood/config"
	"deliveryfood/events"
	"deliveryfood/middleware"
	"deliveryfood/models"
	"deliveryfood/telemetry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IdempotencyKeyHeader lets a client retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutRequest struct {
	CartIDs []uint `json:"cartIds"`
}

// OrderQuote is the provisional order shown before confirmation
type OrderQuote struct {
	Items           []models.OrderItem `json:"items"`
	Subtotal        int64              `json:"subtotal"`
	DeliveryFee     int64              `json:"deliveryFee"`
	TotalPrice      int64              `json:"totalPrice"`
	DeliveryAddress models.Address     `json:"deliveryAddress"`
}

var (
	errNothingSelected   = errors.New("Please select at least one item to checkout.")
	errAddressIncomplete = errors.New("Customer address is incomplete. Please fill in street, city, postal code and phone in your profile.")
	errCartLineMissing   = errors.New("Cart item not found")
)

func quoteErrorStatus(err error) int {
	switch {
	case errors.Is(err, errNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, errAddressIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errCartLineMissing):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// buildQuote prices the selected cart lines of one customer. Prices are read
// from the current menu, so the quote reflects what the order will snapshot.
func buildQuote(tx *gorm.DB, userID uint, cartIDs []uint) (*OrderQuote, []models.CartLine, error) {
	ids := dedupe(cartIDs)
	if len(ids) == 0 {
		return nil, nil, errNothingSelected
	}

	var customer models.User
	if err := tx.First(&customer, userID).Error; err != nil {
		return nil, nil, err
	}
	if !customer.Address.Complete() {
		return nil, nil, errAddressIncomplete
	}

	var lines []models.CartLine
	err := tx.Preload("MenuItem").
		Where("id IN ? AND user_id = ?", ids, userID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		return nil, nil, err
	}
	if len(lines) != len(ids) {
		return nil, nil, errCartLineMissing
	}

	quote := &OrderQuote{
		DeliveryFee:     deps.DeliveryFee,
		DeliveryAddress: customer.Address,
	}
	for _, l := range lines {
		total := l.LineTotal()
		quote.Items = append(quote.Items, models.OrderItem{
			MenuItemID: l.MenuItemID,
			Name:       l.MenuItem.Name,
			Price:      l.MenuItem.Price,
			Quantity:   l.Quantity,
			LineTotal:  total,
		})
		quote.Subtotal += total
	}
	quote.TotalPrice = quote.Subtotal + quote.DeliveryFee
	return quote, lines, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// PreviewOrder returns the provisional quote for the selected cart lines
// without changing anything.
func PreviewOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	quote, _, err := buildQuote(config.DB, middleware.GetUserID(c), req.CartIDs)
	if err != nil {
		if status := quoteErrorStatus(err); status != http.StatusInternalServerError {
			fail(c, status, err.Error())
			return
		}
		internalError(c, "Failed to preview order", err)
		return
	}
	respond(c, http.StatusOK, "Order preview", quote)
}

// CreateOrder finalizes checkout: the order, its items and the initial
// history entry are written and the checked-out cart lines removed in one
// transaction. A repeated Idempotency-Key returns the order already created.
func CreateOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var key *string
	if k := c.GetHeader(IdempotencyKeyHeader); k != "" {
		key = &k
		if existing, ok := orderByKey(customerID, k); ok {
			respond(c, http.StatusOK, "Order already created", existing)
			return
		}
	}

	var order models.Order
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		quote, lines, err := buildQuote(tx, customerID, req.CartIDs)
		if err != nil {
			return err
		}

		order = models.Order{
			CustomerID:      customerID,
			DeliveryAddress: quote.DeliveryAddress,
			Status:          models.StatusPending,
			Subtotal:        quote.Subtotal,
			DeliveryFee:     quote.DeliveryFee,
			TotalPrice:      quote.TotalPrice,
			IdempotencyKey:  key,
			Items:           quote.Items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: customerID,
			Note:      "Order placed by customer",
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		order.StatusHistory = []models.OrderStatusHistory{history}

		lineIDs := make([]uint, len(lines))
		for i, l := range lines {
			lineIDs[i] = l.ID
		}
		return tx.Where("id IN ?", lineIDs).Delete(&models.CartLine{}).Error
	})
	if err != nil {
		checkoutFailed(c, customerID, key, err)
		return
	}

	telemetry.RecordOrderCreated(c.Request.Context(), order.TotalPrice)
	publish(c, events.Event{
		Type:       events.OrderCreated,
		OrderID:    order.ID,
		CustomerID: customerID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		Timestamp:  time.Now().UTC(),
	})
	respond(c, http.StatusCreated, "Order created successfully!", order)
}

// checkoutFailed replies to a failed order transaction. A concurrent request
// with the same key may have created the order and consumed the cart lines,
// so the key is looked up before the failure itself is reported.
func checkoutFailed(c *gin.Context, customerID uint, key *string, err error) {
	if key != nil {
		if existing, ok := orderByKey(customerID, *key); ok {
			respond(c, http.StatusOK, "Order already created", existing)
			return
		}
	}
	if status := quoteErrorStatus(err); status != http.StatusInternalServerError {
		fail(c, status, err.Error())
		return
	}
	internalError(c, "Failed to create order", err)
}

func orderByKey(customerID uint, key string) (*models.Order, bool) {
	var order models.Order
	err := config.DB.Preload("Items").Preload("StatusHistory").
		Where("customer_id = ? AND idempotency_key = ?", customerID, key).
		First(&order).Error
	if err != nil {
		return nil, false
	}
	return &order, true
}

// OrderHistory lists a customer's orders, newest first
func OrderHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var orders []models.Order
	err := config.DB.Preload("Items").Preload("Assignment.Courier").
		Where("customer_id = ?", id).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		internalError(c, "Failed to load order history", err)
		return
	}
	respond(c, http.StatusOK, "Order history retrieved", orders)
}

// GetOrder returns one order with items, assignment and history. Visible to
// admins, the ordering customer and the assigned courier.
func GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var order models.Order
	err := config.DB.
		Preload("Items").
		Preload("Customer").
		Preload("Assignment.Courier").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		internalError(c, "Failed to load order", err)
		return
	}

	if !canViewOrder(c, &order) {
		fail(c, http.StatusForbidden, "You are not allowed to view this order")
		return
	}
	respond(c, http.StatusOK, "Order retrieved", order)
}

func canViewOrder(c *gin.Context, order *models.Order) bool {
	userID := middleware.GetUserID(c)
	switch middleware.GetRole(c) {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return order.CustomerID == userID
	case models.RoleCourier:
		return order.Assignment != nil && order.Assignment.CourierID == userID
	}
	return false
}
