package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"deliveryfood/config"
	"deliveryfood/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageRoute is where uploaded menu images are served from.
const ImageRoute = "/menus/uploads/"

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MenuRequest is sent either as a JSON body or as the "menu" part of a
// multipart form whose optional "image" part carries the picture.
type MenuRequest struct {
	RestaurantID uint   `json:"restaurantId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Price        int64  `json:"price" binding:"required,gt=0"`
}

// ListMenus returns menu items, optionally for one restaurant (?restaurantId=)
// and matching ?search= in name or description.
func ListMenus(c *gin.Context) {
	var items []models.MenuItem
	query := config.DB.Preload("Restaurant")

	if rid := c.Query("restaurantId"); rid != "" {
		query = query.Where("restaurant_id = ?", rid)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if err := query.Order("id asc").Find(&items).Error; err != nil {
		internalError(c, "Failed to list menus", err)
		return
	}
	respond(c, http.StatusOK, "Menus retrieved", items)
}

// GetMenu returns one menu item with its restaurant
func GetMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, ok := findMenu(c, id)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Menu retrieved", item)
}

// CreateMenu adds a menu item to a restaurant (admin)
func CreateMenu(c *gin.Context) {
	req, image, err := bindMenuRequest(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := findRestaurant(c, req.RestaurantID); !ok {
		return
	}

	item := models.MenuItem{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
	}
	if image != nil {
		url, err := saveImage(c, image)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		item.ImageURL = url
	}

	if err := config.DB.Create(&item).Error; err != nil {
		removeImage(item.ImageURL)
		internalError(c, "Failed to create menu", err)
		return
	}
	respond(c, http.StatusCreated, "Menu created successfully!", item)
}

// UpdateMenu replaces a menu item's details; a new image replaces the old one
func UpdateMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	req, image, err := bindMenuRequest(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, ok := findMenu(c, id)
	if !ok {
		return
	}
	if req.RestaurantID != item.RestaurantID {
		if _, ok := findRestaurant(c, req.RestaurantID); !ok {
			return
		}
	}

	oldImage := item.ImageURL
	item.RestaurantID = req.RestaurantID
	item.Restaurant = nil
	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	if image != nil {
		url, err := saveImage(c, image)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		item.ImageURL = url
	}

	if err := config.DB.Save(item).Error; err != nil {
		if item.ImageURL != oldImage {
			removeImage(item.ImageURL)
		}
		internalError(c, "Failed to update menu", err)
		return
	}
	if item.ImageURL != oldImage {
		removeImage(oldImage)
	}
	respond(c, http.StatusOK, "Menu updated successfully!", item)
}

// DeleteMenu removes a menu item and the cart lines that reference it
func DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, ok := findMenu(c, id)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MenuItem{}, id).Error
	})
	if err != nil {
		internalError(c, "Failed to delete menu", err)
		return
	}
	removeImage(item.ImageURL)
	respond(c, http.StatusOK, "Menu deleted successfully!", item)
}

// ServeMenuImage streams an uploaded image (public)
func ServeMenuImage(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == string(filepath.Separator) {
		fail(c, http.StatusNotFound, "Image not found")
		return
	}
	path := filepath.Join(deps.UploadDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		fail(c, http.StatusNotFound, "Image not found")
		return
	}
	c.File(path)
}

func findMenu(c *gin.Context, id uint) (*models.MenuItem, bool) {
	var item models.MenuItem
	err := config.DB.Preload("Restaurant").First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Menu not found")
		return nil, false
	}
	if err != nil {
		internalError(c, "Failed to load menu", err)
		return nil, false
	}
	return &item, true
}

func bindMenuRequest(c *gin.Context) (MenuRequest, *multipart.FileHeader, error) {
	var req MenuRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		err := c.ShouldBindJSON(&req)
		return req, nil, err
	}

	raw := c.PostForm("menu")
	if raw == "" {
		return req, nil, errors.New("multipart field \"menu\" is required")
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, nil, fmt.Errorf("invalid menu JSON: %w", err)
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, nil, err
	}

	image, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, fmt.Errorf("invalid image: %w", err)
	}
	return req, image, nil
}

// saveImage stores the upload under a generated name and returns its URL path.
func saveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	name := uuid.NewString() + ext
	if err := os.MkdirAll(deps.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare upload dir: %w", err)
	}
	if err := c.SaveUploadedFile(file, filepath.Join(deps.UploadDir, name)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return ImageRoute + name, nil
}

func removeImage(url string) {
	if !strings.HasPrefix(url, ImageRoute) {
		return
	}
	path := filepath.Join(deps.UploadDir, filepath.Base(url))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		deps.Logger.Warn("failed to remove menu image", "path", path, "error", err)
	}
}
