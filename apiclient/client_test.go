package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryfood/models"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresToken(t *testing.T) {
	var gotAuth string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "data": map[string]any{
				"token": "jwt-token", "id": 3, "name": "Budi", "email": "budi@test.local", "role": "CUSTOMER",
			}})
		case "/cart/3":
			gotAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, map[string]any{"message": "Cart retrieved", "data": []any{}})
		default:
			http.NotFound(w, r)
		}
	})

	login, err := c.Login(context.Background(), "budi@test.local", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, login.Role)
	assert.Equal(t, "jwt-token", c.Token())

	lines, err := c.GetCart(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, "Bearer jwt-token", gotAuth)
}

func TestErrors(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password!"})
		case "/orders/preview":
			// total does not add up
			writeJSON(w, http.StatusOK, map[string]any{"message": "Order preview", "data": map[string]any{
				"items": []any{map[string]any{"name": "Sate", "price": 1, "quantity": 1}}, "subtotal": 1, "deliveryFee": 1, "totalPrice": 5,
			}})
		case "/users/1":
			writeJSON(w, http.StatusOK, map[string]any{"message": "bad role", "data": nil})
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	ctx := context.Background()

	_, err := c.Login(ctx, "budi@test.local", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password!", MessageOf(err, "fallback"))
	assert.Empty(t, c.Token())

	_, err = c.PreviewOrder(ctx, []uint{1})
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.GetUser(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.ListOrders(ctx)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Equal(t, "fallback", MessageOf(err, "fallback"), "5xx messages are not shown")
}

func TestCreateOrder_SendsIdempotencyKey(t *testing.T) {
	var keys []string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get(IdempotencyKeyHeader))
		var body checkoutBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []uint{4, 9}, body.CartIDs)
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Order created successfully!", "data": map[string]any{
			"id": 12, "status": "PENDING", "totalPrice": 105000,
		}})
	})

	order, err := c.CreateOrder(context.Background(), []uint{4, 9}, "key-123")
	require.NoError(t, err)
	assert.Equal(t, uint(12), order.ID)
	assert.Equal(t, int64(105000), order.TotalPrice)
	assert.Equal(t, []string{"key-123"}, keys)
}

func TestCreateMenu_Multipart(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.JSONEq(t, `{"restaurantId":2,"name":"Bakso","price":20000}`, r.FormValue("menu"))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "bakso.jpg", hdr.Filename)
		assert.Equal(t, "jpeg-bytes", string(data))
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Menu created successfully!", "data": map[string]any{
			"id": 5, "restaurantId": 2, "name": "Bakso", "price": 20000, "imageUrl": "/menus/uploads/x.jpg",
		}})
	})

	menu, err := c.CreateMenu(context.Background(), MenuInput{RestaurantID: 2, Name: "Bakso", Price: 20000},
		&Upload{Filename: "bakso.jpg", Content: strings.NewReader("jpeg-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "/menus/uploads/x.jpg", menu.ImageURL)
}
