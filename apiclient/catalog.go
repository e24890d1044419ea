package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"deliveryfood/models"
)

type RestaurantQuery struct {
	Search string
	Sort   string // name or address
	Order  string // asc or desc
}

type RestaurantInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
}

type MenuInput struct {
	RestaurantID uint   `json:"restaurantId"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        int64  `json:"price"`
}

// Upload is an image attached to a menu create or update.
type Upload struct {
	Filename string
	Content  io.Reader
}

func (c *Client) ListRestaurants(ctx context.Context, q RestaurantQuery) ([]models.Restaurant, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	path := "/restaurants"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.Restaurant
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/restaurants/get/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRestaurant(ctx context.Context, in RestaurantInput) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := c.doJSON(ctx, http.MethodPost, "/restaurants/create", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRestaurant(ctx context.Context, id uint, in RestaurantInput) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/restaurants/update/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRestaurant(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/restaurants/delete/%d", id), nil, nil)
}

// ListMenus returns menu items; restaurantID 0 means every restaurant.
func (c *Client) ListMenus(ctx context.Context, restaurantID uint, search string) ([]models.MenuItem, error) {
	v := url.Values{}
	if restaurantID != 0 {
		v.Set("restaurantId", strconv.FormatUint(uint64(restaurantID), 10))
	}
	if search != "" {
		v.Set("search", search)
	}
	path := "/menus/get"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.MenuItem
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMenu(ctx context.Context, id uint) (*models.MenuItem, error) {
	var out models.MenuItem
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/menus/get/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMenu sends the menu as multipart form data; image may be nil.
func (c *Client) CreateMenu(ctx context.Context, in MenuInput, image *Upload) (*models.MenuItem, error) {
	return c.sendMenu(ctx, http.MethodPost, "/menus/create", in, image)
}

func (c *Client) UpdateMenu(ctx context.Context, id uint, in MenuInput, image *Upload) (*models.MenuItem, error) {
	return c.sendMenu(ctx, http.MethodPut, fmt.Sprintf("/menus/update/%d", id), in, image)
}

func (c *Client) DeleteMenu(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/menus/delete/%d", id), nil, nil)
}

func (c *Client) sendMenu(ctx context.Context, method, path string, in MenuInput, image *Upload) (*models.MenuItem, error) {
	meta, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode menu: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("menu", string(meta)); err != nil {
		return nil, err
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", image.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, image.Content); err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out models.MenuItem
	if err := c.do(ctx, method, path, &buf, &out, "Content-Type", mw.FormDataContentType()); err != nil {
		return nil, err
	}
	return &out, nil
}
