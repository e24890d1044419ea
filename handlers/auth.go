package handlers

import (
	"errors"
	"net/http"

	"deliveryfood/config"
	"deliveryfood/middleware"
	"deliveryfood/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is what the client keeps in its session
type LoginResponse struct {
	Token string          `json:"token"`
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// Register creates a new customer account. Couriers are created by admins
// and the admin account is seeded at startup.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, status, err := createUser(req.Name, req.Email, req.Password, models.RoleCustomer, models.Address{
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
	})
	if err != nil {
		if status == http.StatusInternalServerError {
			internalError(c, "Failed to create user", err)
			return
		}
		fail(c, status, err.Error())
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		internalError(c, "Failed to generate token", err)
		return
	}

	respond(c, http.StatusCreated, "Customer registered successfully!", loginResponse(user, token))
}

// Login authenticates a user and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password!")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password!")
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		internalError(c, "Failed to generate token", err)
		return
	}

	respond(c, http.StatusOK, "Login successful", loginResponse(&user, token))
}

func loginResponse(user *models.User, token string) LoginResponse {
	return LoginResponse{
		Token: token,
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

var errEmailTaken = errors.New("Email already registered!")

// createUser hashes the password and inserts the user. The returned status
// is meaningful only when err is non-nil.
func createUser(name, email, password string, role models.UserRole, addr models.Address) (*models.User, int, error) {
	var existing models.User
	err := config.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, http.StatusConflict, errEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, http.StatusInternalServerError, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Address:      addr,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &user, 0, nil
}
