package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryfood/config"
	"deliveryfood/models"
)

func TestBuildQuote(t *testing.T) {
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	Configure(Deps{DeliveryFee: 5000, UploadDir: t.TempDir()})

	customer := models.User{Name: "Budi", Email: "budi@test.local", PasswordHash: "x", Role: models.RoleCustomer,
		Address: models.Address{Street: "Jl. Merdeka 1", City: "Bandung", PostalCode: "40111", Phone: "0812"}}
	require.NoError(t, db.Create(&customer).Error)
	restaurant := models.Restaurant{Name: "Warung"}
	require.NoError(t, db.Create(&restaurant).Error)
	sate := models.MenuItem{RestaurantID: restaurant.ID, Name: "Sate", Price: 50000}
	teh := models.MenuItem{RestaurantID: restaurant.ID, Name: "Es Teh", Price: 5000}
	require.NoError(t, db.Create(&sate).Error)
	require.NoError(t, db.Create(&teh).Error)
	l1 := models.CartLine{UserID: customer.ID, MenuItemID: sate.ID, Quantity: 2}
	l2 := models.CartLine{UserID: customer.ID, MenuItemID: teh.ID, Quantity: 3}
	require.NoError(t, db.Create(&l1).Error)
	require.NoError(t, db.Create(&l2).Error)

	t.Run("only selected lines are priced", func(t *testing.T) {
		quote, lines, err := buildQuote(db, customer.ID, []uint{l1.ID, l1.ID})
		require.NoError(t, err)
		assert.Len(t, lines, 1)
		assert.Equal(t, int64(100000), quote.Subtotal)
		assert.Equal(t, int64(105000), quote.TotalPrice)
	})

	t.Run("all lines", func(t *testing.T) {
		quote, _, err := buildQuote(db, customer.ID, []uint{l1.ID, l2.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(115000), quote.Subtotal)
		require.Len(t, quote.Items, 2)
		assert.Equal(t, "Es Teh", quote.Items[1].Name)
		assert.Equal(t, int64(15000), quote.Items[1].LineTotal)
	})

	t.Run("errors map to statuses", func(t *testing.T) {
		_, _, err := buildQuote(db, customer.ID, nil)
		assert.Equal(t, http.StatusBadRequest, quoteErrorStatus(err))

		_, _, err = buildQuote(db, customer.ID, []uint{l1.ID, 999})
		assert.Equal(t, http.StatusNotFound, quoteErrorStatus(err))

		require.NoError(t, db.Model(&customer).Update("phone", "").Error)
		_, _, err = buildQuote(db, customer.ID, []uint{l1.ID})
		assert.Equal(t, http.StatusUnprocessableEntity, quoteErrorStatus(err))
	})
}

func TestCheckoutFailed_PrefersOrderWithSameKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	config.DB = db
	Configure(Deps{DeliveryFee: 5000, UploadDir: t.TempDir()})

	customer := models.User{Name: "Budi", Email: "budi@test.local", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&customer).Error)
	key := "checkout-1"
	order := models.Order{CustomerID: customer.ID, Status: models.StatusPending, TotalPrice: 55000, IdempotencyKey: &key}
	require.NoError(t, db.Create(&order).Error)

	reply := func(key *string) (int, string, uint) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		// the cart lines were consumed by the request that created the order
		checkoutFailed(c, customer.ID, key, errCartLineMissing)
		var body struct {
			Message string `json:"message"`
			Data    struct {
				ID uint `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body.Message, body.Data.ID
	}

	code, msg, id := reply(&key)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Order already created", msg)
	assert.Equal(t, order.ID, id)

	other := "checkout-2"
	code, msg, _ = reply(&other)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, errCartLineMissing.Error(), msg)

	code, _, _ = reply(nil)
	assert.Equal(t, http.StatusNotFound, code)
}
