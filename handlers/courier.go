package handlers

import (
	"errors"
	"net/http"
	"time"

	"deliveryfood/config"
	"deliveryfood/events"
	"deliveryfood/middleware"
	"deliveryfood/models"
	"deliveryfood/statemachine"
	"deliveryfood/telemetry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CourierOrders lists the orders assigned to a courier, newest first
func CourierOrders(c *gin.Context) {
	courierID, ok := paramID(c, "courierId")
	if !ok {
		return
	}
	var orders []models.Order
	err := config.DB.Preload("Items").Preload("Customer").Preload("Assignment").
		Joins("JOIN courier_assignments ON courier_assignments.order_id = orders.id").
		Where("courier_assignments.courier_id = ?", courierID).
		Order("orders.created_at desc, orders.id desc").
		Find(&orders).Error
	if err != nil {
		internalError(c, "Failed to load courier orders", err)
		return
	}
	respond(c, http.StatusOK, "Courier orders retrieved", orders)
}

// UpdateStatusRequest names the target status. When empty the order moves
// to the next status of its lifecycle.
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus is called by the assigned courier to move a delivery
// forward. Admins may do it on the courier's behalf.
func UpdateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	var order models.Order
	err := config.DB.Preload("Assignment").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		internalError(c, "Failed to load order", err)
		return
	}

	userID := middleware.GetUserID(c)
	if middleware.GetRole(c) == models.RoleCourier && (order.Assignment == nil || order.Assignment.CourierID != userID) {
		fail(c, http.StatusForbidden, "This order is not assigned to you")
		return
	}
	if order.Assignment == nil {
		fail(c, http.StatusUnprocessableEntity, "Order has no courier yet")
		return
	}

	target := req.Status
	if target == "" {
		next, ok := statemachine.Next(order.Status)
		if !ok {
			fail(c, http.StatusUnprocessableEntity, "Order is already "+string(order.Status))
			return
		}
		target = next
	}

	from := order.Status
	if err := statemachine.CanTransition(from, target, statemachine.ActorCourier); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":           err.Error(),
			"current_status":    from,
			"valid_next_states": statemachine.ValidTransitionsFrom(from),
		})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Guard against a concurrent update that already moved the order.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		note := req.Note
		if note == "" {
			note = "Status updated to " + string(target)
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   target,
			ChangedBy:  userID,
			Note:       note,
		}).Error
	})
	if errors.Is(err, errStatusChanged) {
		fail(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		internalError(c, "Failed to update order status", err)
		return
	}
	order.Status = target

	telemetry.RecordStatusTransition(c.Request.Context(), string(from), string(target))
	publish(c, events.Event{
		Type:       events.StatusChanged,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		CourierID:  &order.Assignment.CourierID,
		FromStatus: from,
		Status:     target,
		TotalPrice: order.TotalPrice,
		Timestamp:  time.Now().UTC(),
	})
	respond(c, http.StatusOK, "Order status updated to "+string(target), gin.H{
		"order_id":        order.ID,
		"previous_status": from,
		"new_status":      target,
		"progress":        statemachine.Progress(target),
	})
}

var errStatusChanged = errors.New("Order status was changed by another request")
