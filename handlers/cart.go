package handlers

import (
	"errors"
	"net/http"

	"deliveryfood/config"
	"deliveryfood/middleware"
	"deliveryfood/models"
	"deliveryfood/telemetry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AddToCartRequest struct {
	MenuID   uint `json:"menuId" binding:"required"`
	Quantity int  `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart lists the caller's cart lines with their menu items
func GetCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var lines []models.CartLine
	err := config.DB.Preload("MenuItem.Restaurant").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		internalError(c, "Failed to load cart", err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved", lines)
}

// AddToCart puts a menu item in the cart. Adding an item that is already
// there increases the existing line's quantity.
func AddToCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	var menu models.MenuItem
	if err := config.DB.First(&menu, req.MenuID).Error; err != nil {
		fail(c, http.StatusNotFound, "Menu not found")
		return
	}

	var line models.CartLine
	status := http.StatusOK
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND menu_item_id = ?", userID, req.MenuID).First(&line).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			line = models.CartLine{UserID: userID, MenuItemID: req.MenuID, Quantity: req.Quantity}
			status = http.StatusCreated
			return tx.Create(&line).Error
		}
		if err != nil {
			return err
		}
		line.Quantity += req.Quantity
		return tx.Model(&line).Update("quantity", line.Quantity).Error
	})
	if err != nil {
		internalError(c, "Failed to add to cart", err)
		return
	}

	line.MenuItem = menu
	telemetry.RecordCartMutation(c.Request.Context(), "add")
	respond(c, status, "Added to cart", line)
}

// UpdateCartLine sets a line's quantity; quantities below 1 are rejected
func UpdateCartLine(c *gin.Context) {
	id, ok := paramID(c, "cartId")
	if !ok {
		return
	}
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	line, ok := findOwnCartLine(c, id)
	if !ok {
		return
	}

	if err := config.DB.Model(line).Update("quantity", req.Quantity).Error; err != nil {
		internalError(c, "Failed to update cart", err)
		return
	}
	line.Quantity = req.Quantity
	telemetry.RecordCartMutation(c.Request.Context(), "update")
	respond(c, http.StatusOK, "Cart updated", line)
}

// DeleteCartLine removes a line from the caller's cart
func DeleteCartLine(c *gin.Context) {
	id, ok := paramID(c, "cartId")
	if !ok {
		return
	}
	line, ok := findOwnCartLine(c, id)
	if !ok {
		return
	}

	if err := config.DB.Delete(&models.CartLine{}, id).Error; err != nil {
		internalError(c, "Failed to delete cart item", err)
		return
	}
	telemetry.RecordCartMutation(c.Request.Context(), "delete")
	respond(c, http.StatusOK, "Cart item removed", line)
}

func findOwnCartLine(c *gin.Context, id uint) (*models.CartLine, bool) {
	var line models.CartLine
	err := config.DB.Preload("MenuItem").First(&line, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Cart item not found")
		return nil, false
	}
	if err != nil {
		internalError(c, "Failed to load cart item", err)
		return nil, false
	}
	if line.UserID != middleware.GetUserID(c) {
		fail(c, http.StatusForbidden, "This cart item does not belong to you")
		return nil, false
	}
	return &line, true
}
