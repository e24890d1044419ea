package handlers

import (
	"errors"
	"net/http"

	"deliveryfood/config"
	"deliveryfood/models"
	"deliveryfood/statemachine"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GetUser returns a profile, including the saved delivery address
func GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	respond(c, http.StatusOK, "User retrieved", user)
}

// UpdateAddressRequest leaves fields that are omitted untouched
type UpdateAddressRequest struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Phone      *string `json:"phone"`
}

// UpdateAddress edits the profile address used at checkout
func UpdateAddress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if req.Street != nil {
		user.Street = *req.Street
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if err := config.DB.Save(&user).Error; err != nil {
		internalError(c, "Failed to update address", err)
		return
	}
	respond(c, http.StatusOK, "Address updated successfully", user)
}

// ListUsers returns all users; ?role= narrows the list
func ListUsers(c *gin.Context) {
	var users []models.User
	query := config.DB.Order("id asc")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		internalError(c, "Failed to list users", err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved", users)
}

type CourierRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=6"`
	Phone    string `json:"phone"`
}

// CreateCourier registers a courier account on behalf of an admin
func CreateCourier(c *gin.Context) {
	var req CourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" {
		fail(c, http.StatusBadRequest, "Password is required")
		return
	}

	user, status, err := createUser(req.Name, req.Email, req.Password, models.RoleCourier, models.Address{Phone: req.Phone})
	if err != nil {
		if status == http.StatusInternalServerError {
			internalError(c, "Failed to create courier", err)
			return
		}
		fail(c, status, err.Error())
		return
	}
	respond(c, http.StatusCreated, "Courier registered successfully!", user)
}

// UpdateCourier edits a courier; an empty password keeps the old one
func UpdateCourier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	courier, ok := findCourier(c, id)
	if !ok {
		return
	}

	if req.Email != courier.Email {
		var count int64
		if err := config.DB.Model(&models.User{}).Where("email = ? AND id <> ?", req.Email, id).Count(&count).Error; err != nil {
			internalError(c, "Failed to update courier", err)
			return
		}
		if count > 0 {
			fail(c, http.StatusConflict, errEmailTaken.Error())
			return
		}
	}

	courier.Name = req.Name
	courier.Email = req.Email
	if req.Phone != "" {
		courier.Phone = req.Phone
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			internalError(c, "Failed to hash password", err)
			return
		}
		courier.PasswordHash = string(hash)
	}
	if err := config.DB.Save(courier).Error; err != nil {
		internalError(c, "Failed to update courier", err)
		return
	}
	respond(c, http.StatusOK, "Courier updated successfully!", courier)
}

// DeleteCourier removes a courier who has no delivery in progress
func DeleteCourier(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	courier, ok := findCourier(c, id)
	if !ok {
		return
	}

	var active int64
	err := config.DB.Model(&models.CourierAssignment{}).
		Joins("JOIN orders ON orders.id = courier_assignments.order_id").
		Where("courier_assignments.courier_id = ? AND orders.status IN ?", id, activeStatuses()).
		Count(&active).Error
	if err != nil {
		internalError(c, "Failed to delete courier", err)
		return
	}
	if active > 0 {
		fail(c, http.StatusConflict, "Courier has deliveries in progress")
		return
	}

	if err := config.DB.Delete(courier).Error; err != nil {
		internalError(c, "Failed to delete courier", err)
		return
	}
	respond(c, http.StatusOK, "Courier deleted successfully!", courier)
}

func findCourier(c *gin.Context, id uint) (*models.User, bool) {
	var courier models.User
	err := config.DB.Where("id = ? AND role = ?", id, models.RoleCourier).First(&courier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Courier not found!")
		return nil, false
	}
	if err != nil {
		internalError(c, "Failed to load courier", err)
		return nil, false
	}
	return &courier, true
}

// activeStatuses are the statuses during which a courier is busy
func activeStatuses() []models.OrderStatus {
	var out []models.OrderStatus
	for _, s := range statemachine.Lifecycle {
		if s != models.StatusPending && !statemachine.IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}
