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

// ListOrders returns all orders with full detail, newest first.
// ?status= and ?customerId= narrow the list.
func ListOrders(c *gin.Context) {
	var orders []models.Order
	query := config.DB.Preload("Items").Preload("Customer").Preload("Assignment.Courier")

	if status := c.Query("status"); status != "" {
		if !statemachine.Valid(models.OrderStatus(status)) {
			fail(c, http.StatusBadRequest, "Unknown status "+status)
			return
		}
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	if err := query.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		internalError(c, "Failed to list orders", err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved", orders)
}

// reportLayouts maps a report type to the time layout of its periods
var reportLayouts = map[string]string{
	"daily":   "2006-01-02",
	"monthly": "2006-01",
	"yearly":  "2006",
}

type RevenueReport struct {
	Type        string           `json:"type"`
	Report      map[string]int64 `json:"report"`
	OrdersCount int              `json:"orders_count"`
}

// Reports sums the revenue of delivered orders per day, month or year
func Reports(c *gin.Context) {
	reportType := c.DefaultQuery("type", "daily")
	layout, ok := reportLayouts[reportType]
	if !ok {
		fail(c, http.StatusBadRequest, "type must be one of: daily, monthly, yearly")
		return
	}

	var orders []models.Order
	err := config.DB.Select("id", "total_price", "created_at").
		Where("status = ?", models.StatusDelivered).
		Find(&orders).Error
	if err != nil {
		internalError(c, "Failed to build report", err)
		return
	}

	report := RevenueReport{Type: reportType, Report: map[string]int64{}, OrdersCount: len(orders)}
	for _, o := range orders {
		report.Report[o.CreatedAt.UTC().Format(layout)] += o.TotalPrice
	}
	respond(c, http.StatusOK, "Report generated", report)
}

// UnassignedOrders lists PENDING orders that no courier has yet, oldest first
func UnassignedOrders(c *gin.Context) {
	var orders []models.Order
	err := config.DB.Preload("Items").Preload("Customer").
		Where("status = ?", models.StatusPending).
		Where("NOT EXISTS (SELECT 1 FROM courier_assignments ca WHERE ca.order_id = orders.id)").
		Order("created_at asc, id asc").
		Find(&orders).Error
	if err != nil {
		internalError(c, "Failed to list unassigned orders", err)
		return
	}
	respond(c, http.StatusOK, "Unassigned orders retrieved", orders)
}

// AvailableCouriers lists couriers with no delivery in progress
func AvailableCouriers(c *gin.Context) {
	var couriers []models.User
	err := config.DB.Where("role = ?", models.RoleCourier).
		Where(`NOT EXISTS (SELECT 1 FROM courier_assignments ca JOIN orders o ON o.id = ca.order_id
			WHERE ca.courier_id = users.id AND o.status IN ?)`, activeStatuses()).
		Order("name asc, id asc").
		Find(&couriers).Error
	if err != nil {
		internalError(c, "Failed to list available couriers", err)
		return
	}
	respond(c, http.StatusOK, "Available couriers retrieved", couriers)
}

var (
	errOrderAlreadyAssigned = errors.New("Order already has a courier")
	errOrderNotPending      = errors.New("Only PENDING orders can be assigned")
)

// AssignCourier pairs a PENDING order with a courier and moves it to ASSIGNED
func AssignCourier(c *gin.Context) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	courierID, ok := paramID(c, "courierId")
	if !ok {
		return
	}

	var courier models.User
	if err := config.DB.First(&courier, courierID).Error; err != nil {
		fail(c, http.StatusNotFound, "Courier not found!")
		return
	}
	if courier.Role != models.RoleCourier {
		fail(c, http.StatusBadRequest, "User is not a courier")
		return
	}

	var order models.Order
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Assignment").First(&order, orderID).Error; err != nil {
			return err
		}
		if order.Assignment != nil {
			return errOrderAlreadyAssigned
		}
		if err := statemachine.CanTransition(order.Status, models.StatusAssigned, statemachine.ActorAdmin); err != nil {
			return errOrderNotPending
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.StatusPending).
			Update("status", models.StatusAssigned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errOrderNotPending
		}

		assignment := models.CourierAssignment{OrderID: order.ID, CourierID: courier.ID, AssignedAt: time.Now().UTC()}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		history := models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: models.StatusPending,
			ToStatus:   models.StatusAssigned,
			ChangedBy:  middleware.GetUserID(c),
			Note:       "Courier " + courier.Name + " assigned by admin",
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		assignment.Courier = &courier
		order.Assignment = &assignment
		order.Status = models.StatusAssigned
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, errOrderAlreadyAssigned):
		fail(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errOrderNotPending):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":        err.Error(),
			"current_status": order.Status,
		})
		return
	case err != nil:
		internalError(c, "Failed to assign courier", err)
		return
	}

	telemetry.RecordStatusTransition(c.Request.Context(), string(models.StatusPending), string(models.StatusAssigned))
	publish(c, events.Event{
		Type:       events.CourierAssigned,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		CourierID:  &courier.ID,
		FromStatus: models.StatusPending,
		Status:     models.StatusAssigned,
		TotalPrice: order.TotalPrice,
		Timestamp:  time.Now().UTC(),
	})
	respond(c, http.StatusOK, "Courier assigned successfully!", order)
}
