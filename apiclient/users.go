package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"deliveryfood/models"
)

// Login is the identity returned by /users/login and /users/register.
type Login struct {
	Token string          `json:"token" validate:"required"`
	ID    uint            `json:"id" validate:"required"`
	Name  string          `json:"name"`
	Email string          `json:"email" validate:"required,email"`
	Role  models.UserRole `json:"role" validate:"required,oneof=CUSTOMER COURIER ADMIN"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	models.Address
}

// CourierInput creates or updates a courier. An empty Password on update
// keeps the current one.
type CourierInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Login authenticates and remembers the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Login, error) {
	var out Login
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", body, &out); err != nil {
		return nil, err
	}
	if err := c.check(&out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Register creates a customer account and signs it in.
func (c *Client) Register(ctx context.Context, r Registration) (*Login, error) {
	var out Login
	if err := c.doJSON(ctx, http.MethodPost, "/users/register", r, &out); err != nil {
		return nil, err
	}
	if err := c.check(&out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, fmt.Errorf("%w: user without id", ErrInvalidResponse)
	}
	return &out, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id uint, addr models.Address) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d/address", id), addr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns all users, or only those with role when it is set.
func (c *Client) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	path := "/users/all"
	if role != "" {
		path += "?role=" + url.QueryEscape(string(role))
	}
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCourier(ctx context.Context, adminID uint, in CourierInput) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/users/register/courier/%d", adminID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCourier(ctx context.Context, adminID, id uint, in CourierInput) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/courier/%d/%d", adminID, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCourier(ctx context.Context, adminID, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/courier/%d/%d", adminID, id), nil, nil)
}
