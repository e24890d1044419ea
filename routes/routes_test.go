package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryfood/config"
	"deliveryfood/events"
	"deliveryfood/handlers"
	"deliveryfood/logger"
	"deliveryfood/models"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t          *testing.T
	router     *gin.Engine
	events     *events.Recorder
	adminID    uint
	adminToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	config.DB = db
	config.JWTSecret = []byte("test-secret")

	auth := config.AuthConfig{AdminName: "Admin", AdminEmail: "admin@test.local", AdminPassword: "admin123"}
	require.NoError(t, config.SeedAdmin(db, auth, logger.Discard()))

	rec := &events.Recorder{}
	handlers.Configure(handlers.Deps{
		Events:      rec,
		Logger:      logger.Discard(),
		DeliveryFee: 5000,
		UploadDir:   t.TempDir(),
	})

	api := &testAPI{t: t, router: NewRouter(logger.Discard(), nil), events: rec}
	login := api.login("admin@test.local", "admin123")
	api.adminID, api.adminToken = login.ID, login.Token
	return api
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token, headers...)
}

func (a *testAPI) send(req *http.Request, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if json.Valid(w.Body.Bytes()) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (a *testAPI) login(email, password string) handlers.LoginResponse {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/users/login", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, env.Message)
	return decode[handlers.LoginResponse](a.t, env)
}

func (a *testAPI) registerCustomer(email string, withAddress bool) handlers.LoginResponse {
	a.t.Helper()
	body := gin.H{"name": "Budi", "email": email, "password": "secret123"}
	if withAddress {
		body["street"] = "Jl. Merdeka 1"
		body["city"] = "Bandung"
		body["postalCode"] = "40111"
		body["phone"] = "08123456789"
	}
	w, env := a.do(http.MethodPost, "/users/register", "", body)
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	return decode[handlers.LoginResponse](a.t, env)
}

func (a *testAPI) createCourier(email string) handlers.LoginResponse {
	a.t.Helper()
	path := fmt.Sprintf("/users/register/courier/%d", a.adminID)
	w, env := a.do(http.MethodPost, path, a.adminToken, gin.H{"name": "Kurir " + email, "email": email, "password": "secret123"})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	return a.login(email, "secret123")
}

func (a *testAPI) createMenu(price int64) models.MenuItem {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/restaurants/create", a.adminToken, gin.H{"name": "Warung Sate", "address": "Jl. Braga 5"})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	restaurant := decode[models.Restaurant](a.t, env)

	w, env = a.do(http.MethodPost, "/menus/create", a.adminToken, gin.H{
		"restaurantId": restaurant.ID, "name": "Sate Ayam", "price": price,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	return decode[models.MenuItem](a.t, env)
}

func (a *testAPI) addToCart(token string, menuID uint, qty int) models.CartLine {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/cart", token, gin.H{"menuId": menuID, "quantity": qty})
	require.Contains(a.t, []int{http.StatusOK, http.StatusCreated}, w.Code, env.Message)
	return decode[models.CartLine](a.t, env)
}

func (a *testAPI) placeOrder(token string, price int64, qty int) models.Order {
	a.t.Helper()
	menu := a.createMenu(price)
	line := a.addToCart(token, menu.ID, qty)
	w, env := a.do(http.MethodPost, "/orders/create", token, gin.H{"cartIds": []uint{line.ID}})
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	return decode[models.Order](a.t, env)
}

func TestCheckout_PreviewThenConfirm(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	menu := api.createMenu(50000)
	line := api.addToCart(customer.Token, menu.ID, 2)

	w, env := api.do(http.MethodPost, "/orders/preview", customer.Token, gin.H{"cartIds": []uint{line.ID}})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	quote := decode[handlers.OrderQuote](t, env)
	assert.Equal(t, int64(100000), quote.Subtotal)
	assert.Equal(t, int64(5000), quote.DeliveryFee)
	assert.Equal(t, int64(105000), quote.TotalPrice)
	assert.Equal(t, "Bandung", quote.DeliveryAddress.City)

	// Preview leaves the cart alone.
	w, env = api.do(http.MethodGet, fmt.Sprintf("/cart/%d", customer.ID), customer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CartLine](t, env), 1)

	w, env = api.do(http.MethodPost, "/orders/create", customer.Token, gin.H{"cartIds": []uint{line.ID}},
		handlers.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	order := decode[models.Order](t, env)
	assert.Equal(t, int64(105000), order.TotalPrice)
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(100000), order.Items[0].LineTotal)

	w, env = api.do(http.MethodGet, fmt.Sprintf("/cart/%d", customer.ID), customer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.CartLine](t, env))

	recorded := api.events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.OrderCreated, recorded[0].Type)
	assert.Equal(t, order.ID, recorded[0].OrderID)
}

func TestCheckout_RepeatedIdempotencyKey(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	menu := api.createMenu(20000)
	line := api.addToCart(customer.Token, menu.ID, 1)
	body := gin.H{"cartIds": []uint{line.ID}}

	w, env := api.do(http.MethodPost, "/orders/create", customer.Token, body, handlers.IdempotencyKeyHeader, "same-key")
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	first := decode[models.Order](t, env)

	w, env = api.do(http.MethodPost, "/orders/create", customer.Token, body, handlers.IdempotencyKeyHeader, "same-key")
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, first.ID, decode[models.Order](t, env).ID)

	var count int64
	require.NoError(t, config.DB.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// keys are scoped to the customer
	other := api.registerCustomer("siti@test.local", true)
	otherLine := api.addToCart(other.Token, menu.ID, 2)
	w, env = api.do(http.MethodPost, "/orders/create", other.Token, gin.H{"cartIds": []uint{otherLine.ID}}, handlers.IdempotencyKeyHeader, "same-key")
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	second := decode[models.Order](t, env)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, other.ID, second.CustomerID)
}

func TestCheckout_Guards(t *testing.T) {
	api := newTestAPI(t)
	menu := api.createMenu(15000)

	t.Run("nothing selected", func(t *testing.T) {
		customer := api.registerCustomer("a@test.local", true)
		w, env := api.do(http.MethodPost, "/orders/create", customer.Token, gin.H{"cartIds": []uint{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please select at least one item to checkout.", env.Message)
	})

	t.Run("incomplete address", func(t *testing.T) {
		customer := api.registerCustomer("b@test.local", false)
		line := api.addToCart(customer.Token, menu.ID, 1)
		w, env := api.do(http.MethodPost, "/orders/preview", customer.Token, gin.H{"cartIds": []uint{line.ID}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, env.Message, "Customer address is incomplete")
	})

	t.Run("someone else's cart line", func(t *testing.T) {
		owner := api.registerCustomer("c@test.local", true)
		other := api.registerCustomer("d@test.local", true)
		line := api.addToCart(owner.Token, menu.ID, 1)
		w, _ := api.do(http.MethodPost, "/orders/create", other.Token, gin.H{"cartIds": []uint{line.ID}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCart_QuantityRules(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	menu := api.createMenu(10000)

	first := api.addToCart(customer.Token, menu.ID, 1)
	second := api.addToCart(customer.Token, menu.ID, 2)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	path := fmt.Sprintf("/cart/%d", first.ID)
	w, _ := api.do(http.MethodPut, path, customer.Token, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := api.do(http.MethodPut, path, customer.Token, gin.H{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, 5, decode[models.CartLine](t, env).Quantity)

	other := api.registerCustomer("other@test.local", true)
	w, _ = api.do(http.MethodPut, path, other.Token, gin.H{"quantity": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodDelete, path, customer.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodDelete, path, customer.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourier_DeliveryLifecycle(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	courier := api.createCourier("kurir@test.local")
	order := api.placeOrder(customer.Token, 50000, 2)

	w, env := api.do(http.MethodGet, "/courier-assignments/unassigned-orders", api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]models.Order](t, env), 1)

	w, env = api.do(http.MethodPost, fmt.Sprintf("/courier-assignments/assign/%d/%d", order.ID, courier.ID), api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, models.StatusAssigned, decode[models.Order](t, env).Status)

	w, env = api.do(http.MethodGet, "/courier-assignments/available-couriers", api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.User](t, env))

	w, env = api.do(http.MethodGet, fmt.Sprintf("/courier-assignments/courier-orders/%d", courier.ID), courier.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	require.Len(t, decode[[]models.Order](t, env), 1)

	statusPath := fmt.Sprintf("/courier-assignments/update-status/%d", order.ID)
	for _, want := range []models.OrderStatus{models.StatusPickedUp, models.StatusOnDelivery, models.StatusDelivered} {
		w, env = api.do(http.MethodPut, statusPath, courier.Token, nil)
		require.Equal(t, http.StatusOK, w.Code, env.Message)
		data := decode[map[string]any](t, env)
		assert.Equal(t, string(want), data["new_status"])
	}

	w, _ = api.do(http.MethodPut, statusPath, courier.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env = api.do(http.MethodGet, fmt.Sprintf("/orders/get/%d", order.ID), customer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[models.Order](t, env)
	assert.Equal(t, models.StatusDelivered, detail.Status)
	assert.Len(t, detail.StatusHistory, 5)

	w, env = api.do(http.MethodGet, "/courier-assignments/available-couriers", api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, env), 1)

	w, env = api.do(http.MethodGet, "/orders/reports?type=daily", api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[handlers.RevenueReport](t, env)
	assert.Equal(t, 1, report.OrdersCount)
	assert.Equal(t, int64(105000), report.Report[time.Now().UTC().Format("2006-01-02")])

	var types []events.Type
	for _, e := range api.events.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.Type{
		events.OrderCreated, events.CourierAssigned,
		events.StatusChanged, events.StatusChanged, events.StatusChanged,
	}, types)
}

func TestCourier_UpdateStatusRejections(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	courier := api.createCourier("kurir@test.local")
	stranger := api.createCourier("lain@test.local")
	order := api.placeOrder(customer.Token, 30000, 1)
	statusPath := fmt.Sprintf("/courier-assignments/update-status/%d", order.ID)

	w, _ := api.do(http.MethodPut, statusPath, api.adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "no courier yet")

	w, env := api.do(http.MethodPost, fmt.Sprintf("/courier-assignments/assign/%d/%d", order.ID, courier.ID), api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, _ = api.do(http.MethodPut, statusPath, stranger.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodPut, statusPath, courier.Token, gin.H{"status": models.StatusDelivered})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "skipping states")

	w, _ = api.do(http.MethodPut, statusPath, customer.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignCourier_Refusals(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	courier := api.createCourier("kurir@test.local")
	order := api.placeOrder(customer.Token, 30000, 1)

	w, _ := api.do(http.MethodPost, fmt.Sprintf("/courier-assignments/assign/%d/%d", order.ID, customer.ID), api.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/courier-assignments/assign/%d/%d", order.ID, courier.ID)
	w, _ = api.do(http.MethodPost, path, api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodPost, path, api.adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/courier-assignments/assign/%d/%d", 999, courier.ID), api.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourierManagement(t *testing.T) {
	api := newTestAPI(t)
	courier := api.createCourier("kurir@test.local")
	api.createCourier("taken@test.local")

	w, _ := api.do(http.MethodPut, fmt.Sprintf("/users/courier/%d/%d", api.adminID+100, courier.ID), api.adminToken,
		gin.H{"name": "X", "email": "x@test.local"})
	assert.Equal(t, http.StatusForbidden, w.Code, "adminId must be the caller")

	path := fmt.Sprintf("/users/courier/%d/%d", api.adminID, courier.ID)
	w, _ = api.do(http.MethodPut, path, api.adminToken, gin.H{"name": "X", "email": "taken@test.local"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := api.do(http.MethodPut, path, api.adminToken, gin.H{"name": "Kurir Baru", "email": "baru@test.local"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	api.login("baru@test.local", "secret123")

	customer := api.registerCustomer("budi@test.local", true)
	order := api.placeOrder(customer.Token, 30000, 1)
	w, _ = api.do(http.MethodPost, fmt.Sprintf("/courier-assignments/assign/%d/%d", order.ID, courier.ID), api.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodDelete, path, api.adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "courier is busy")
}

func TestRoleGate(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", true)
	other := api.registerCustomer("siti@test.local", true)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/orders/get", "", http.StatusUnauthorized},
		{"customer on admin list", http.MethodGet, "/orders/get", customer.Token, http.StatusForbidden},
		{"admin on admin list", http.MethodGet, "/orders/get", api.adminToken, http.StatusOK},
		{"someone else's cart", http.MethodGet, fmt.Sprintf("/cart/%d", other.ID), customer.Token, http.StatusForbidden},
		{"someone else's profile", http.MethodGet, fmt.Sprintf("/users/%d", other.ID), customer.Token, http.StatusForbidden},
		{"admin reads any profile", http.MethodGet, fmt.Sprintf("/users/%d", other.ID), api.adminToken, http.StatusOK},
		{"admin cannot use cart", http.MethodPost, "/cart", api.adminToken, http.StatusForbidden},
		{"public restaurants", http.MethodGet, "/restaurants", "", http.StatusOK},
		{"bad token", http.MethodGet, "/users/all", "garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := api.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestProfileAddressUpdate(t *testing.T) {
	api := newTestAPI(t)
	customer := api.registerCustomer("budi@test.local", false)
	path := fmt.Sprintf("/users/%d/address", customer.ID)

	w, env := api.do(http.MethodPut, path, customer.Token, gin.H{"street": "Jl. Asia Afrika 8", "city": "Bandung"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	user := decode[models.User](t, env)
	assert.Equal(t, "Bandung", user.City)
	assert.False(t, user.Address.Complete())

	w, env = api.do(http.MethodPut, path, customer.Token, gin.H{"postalCode": "40111", "phone": "0812"})
	require.Equal(t, http.StatusOK, w.Code)
	user = decode[models.User](t, env)
	assert.Equal(t, "Jl. Asia Afrika 8", user.Street)
	assert.True(t, user.Address.Complete())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.registerCustomer("budi@test.local", true)
	w, _ := api.do(http.MethodPost, "/users/register", "", gin.H{"name": "B", "email": "budi@test.local", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := api.do(http.MethodPost, "/users/login", "", gin.H{"email": "budi@test.local", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password!", env.Message)
}

func TestRestaurants_SearchAndSort(t *testing.T) {
	api := newTestAPI(t)
	for _, r := range []gin.H{
		{"name": "Bakso Malang", "address": "Jl. Dago 1"},
		{"name": "Ayam Geprek", "address": "Jl. Riau 2"},
		{"name": "Soto Betawi", "address": "Jl. Dago 9"},
	} {
		w, env := api.do(http.MethodPost, "/restaurants/create", api.adminToken, r)
		require.Equal(t, http.StatusCreated, w.Code, env.Message)
	}

	names := func(path string) []string {
		w, env := api.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, env.Message)
		var out []string
		for _, r := range decode[[]models.Restaurant](t, env) {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Ayam Geprek", "Bakso Malang", "Soto Betawi"}, names("/restaurants"))
	assert.Equal(t, []string{"Soto Betawi", "Bakso Malang"}, names("/restaurants?search=dago&order=desc"))
	assert.Equal(t, []string{"Bakso Malang", "Soto Betawi", "Ayam Geprek"}, names("/restaurants?sort=address"))

	w, _ := api.do(http.MethodGet, "/restaurants?sort=phone", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenus_MultipartWithImage(t *testing.T) {
	api := newTestAPI(t)
	w, env := api.do(http.MethodPost, "/restaurants/create", api.adminToken, gin.H{"name": "Warung", "address": "Jl. Braga"})
	require.Equal(t, http.StatusCreated, w.Code)
	restaurant := decode[models.Restaurant](t, env)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("menu", fmt.Sprintf(`{"restaurantId":%d,"name":"Nasi Goreng","price":25000}`, restaurant.ID)))
	part, err := mw.CreateFormFile("image", "nasi.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/menus/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env = api.send(req, api.adminToken)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	menu := decode[models.MenuItem](t, env)
	assert.Equal(t, int64(25000), menu.Price)
	require.NotEmpty(t, menu.ImageURL)

	w, _ = api.do(http.MethodGet, menu.ImageURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake image", w.Body.String())

	w, env = api.do(http.MethodGet, fmt.Sprintf("/menus/get?restaurantId=%d&search=goreng", restaurant.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.MenuItem](t, env), 1)

	w, _ = api.do(http.MethodPost, "/menus/create", api.adminToken, gin.H{"restaurantId": restaurant.ID, "name": "Gratis", "price": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodDelete, fmt.Sprintf("/menus/delete/%d", menu.ID), api.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodGet, menu.ImageURL, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndStateMachine(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := api.do(http.MethodGet, "/state-machine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode[map[string]json.RawMessage](t, env)
	assert.Contains(t, string(data["states"]), "ON_DELIVERY")
}
