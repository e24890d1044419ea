package models

import "time"

// CartLine is one (user, menu item, quantity) record before checkout.
// Quantity never drops below 1; a line is deleted instead.
type CartLine struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userId" gorm:"not null;uniqueIndex:idx_cart_user_menu"`
	MenuItemID uint      `json:"menuId" gorm:"not null;uniqueIndex:idx_cart_user_menu"`
	MenuItem   MenuItem  `json:"menu" gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	Quantity   int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LineTotal is price × quantity for the line.
func (l CartLine) LineTotal() int64 {
	return l.MenuItem.Price * int64(l.Quantity)
}
