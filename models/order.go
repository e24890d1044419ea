package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusAssigned   OrderStatus = "ASSIGNED"
	StatusPickedUp   OrderStatus = "PICKED_UP"
	StatusOnDelivery OrderStatus = "ON_DELIVERY"
	StatusDelivered  OrderStatus = "DELIVERED"
)

type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	CustomerID      uint                 `json:"customerId" gorm:"not null;index;uniqueIndex:idx_orders_customer_key,priority:1"`
	Customer        *User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	DeliveryAddress Address              `json:"deliveryAddress" gorm:"embedded;embeddedPrefix:delivery_"`
	Status          OrderStatus          `json:"status" gorm:"not null;default:'PENDING';index"`
	Subtotal        int64                `json:"subtotal"`
	DeliveryFee     int64                `json:"deliveryFee"`
	TotalPrice      int64                `json:"totalPrice"`
	IdempotencyKey  *string              `json:"-" gorm:"uniqueIndex:idx_orders_customer_key,priority:2"`
	Items           []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Assignment      *CourierAssignment   `json:"courierAssignment,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory   []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// OrderItem snapshots the menu item's name and price at checkout time
type OrderItem struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	OrderID    uint   `json:"orderId" gorm:"not null;index"`
	MenuItemID uint   `json:"menuId" gorm:"not null"`
	Name       string `json:"name"`
	Price      int64  `json:"price" gorm:"not null"`
	Quantity   int    `json:"quantity" gorm:"not null"`
	LineTotal  int64  `json:"totalPriceItem"`
}

// CourierAssignment pairs an order with the courier delivering it.
// An order has at most one assignment.
type CourierAssignment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"orderId" gorm:"not null;uniqueIndex"`
	CourierID  uint      `json:"courierId" gorm:"not null;index"`
	Courier    *User     `json:"courier,omitempty" gorm:"foreignKey:CourierID;constraint:OnDelete:CASCADE"`
	AssignedAt time.Time `json:"assignedAt"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uint        `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
