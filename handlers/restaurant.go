package handlers

import (
	"errors"
	"net/http"
	"strings"

	"deliveryfood/config"
	"deliveryfood/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RestaurantRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Phone   string `json:"phone"`
}

var restaurantSortColumns = map[string]string{
	"name":    "name",
	"address": "address",
}

// ListRestaurants returns restaurants (public).
// Supports ?search= over name and address, ?sort=name|address and ?order=asc|desc.
func ListRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	query := config.DB.Model(&models.Restaurant{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}

	column, ok := restaurantSortColumns[c.DefaultQuery("sort", "name")]
	if !ok {
		fail(c, http.StatusBadRequest, "sort must be one of: name, address")
		return
	}
	direction := strings.ToLower(c.DefaultQuery("order", "asc"))
	if direction != "asc" && direction != "desc" {
		fail(c, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	if err := query.Order(column + " " + direction).Order("id asc").Find(&restaurants).Error; err != nil {
		internalError(c, "Failed to list restaurants", err)
		return
	}
	respond(c, http.StatusOK, "Restaurants retrieved", restaurants)
}

// GetRestaurant returns a single restaurant
func GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurant, ok := findRestaurant(c, id)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Restaurant retrieved", restaurant)
}

// CreateRestaurant adds a restaurant (admin)
func CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	restaurant := models.Restaurant{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := config.DB.Create(&restaurant).Error; err != nil {
		internalError(c, "Failed to create restaurant", err)
		return
	}
	respond(c, http.StatusCreated, "Restaurant created successfully!", restaurant)
}

// UpdateRestaurant replaces a restaurant's details (admin)
func UpdateRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	restaurant, ok := findRestaurant(c, id)
	if !ok {
		return
	}

	restaurant.Name = req.Name
	restaurant.Address = req.Address
	restaurant.Phone = req.Phone
	if err := config.DB.Save(restaurant).Error; err != nil {
		internalError(c, "Failed to update restaurant", err)
		return
	}
	respond(c, http.StatusOK, "Restaurant updated successfully!", restaurant)
}

// DeleteRestaurant removes a restaurant together with its menus (admin)
func DeleteRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	restaurant, ok := findRestaurant(c, id)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		// Cart lines cascade from menu items, but delete them explicitly so
		// databases without foreign key enforcement stay consistent.
		menuIDs := tx.Model(&models.MenuItem{}).Select("id").Where("restaurant_id = ?", id)
		if err := tx.Where("menu_item_id IN (?)", menuIDs).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(restaurant).Error
	})
	if err != nil {
		internalError(c, "Failed to delete restaurant", err)
		return
	}
	respond(c, http.StatusOK, "Restaurant deleted successfully!", restaurant)
}

func findRestaurant(c *gin.Context, id uint) (*models.Restaurant, bool) {
	var restaurant models.Restaurant
	err := config.DB.First(&restaurant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Restaurant not found")
		return nil, false
	}
	if err != nil {
		internalError(c, "Failed to load restaurant", err)
		return nil, false
	}
	return &restaurant, true
}
