package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"emporium/internal/handlers"
	"emporium/internal/middleware"
	"emporium/internal/models"
	"emporium/internal/repositories"
	"emporium/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services, wired the way main.go wires them (no RabbitMQ).
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Initialize in-memory SQLite database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{}, &models.CartItem{}))

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db, productRepo)

	// Initialize Services
	authService := services.NewAuthService(userRepo, jwtSecret)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo, nil) // nil for RabbitMQ client

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterRoutes(protectedRoutes)
	cartHandler.RegisterRoutes(protectedRoutes)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates a user with the given role and returns a token.
func registerAndLogin(t *testing.T, app *fiber.App, username, role string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResult struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &loginResult)
	require.NotEmpty(t, loginResult.Token)
	return loginResult.Token
}

func registerProduct(t *testing.T, app *fiber.App, token, model string, price float64, quantity int) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/", token, map[string]interface{}{
		"model":        model,
		"category":     models.CategoryAppliance,
		"sellingPrice": price,
		"quantity":     quantity,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCartScenario_AddCheckoutHistory(t *testing.T) {
	app := setupApp(t)
	manager := registerAndLogin(t, app, "mallory", models.RoleManager)
	alice := registerAndLogin(t, app, "alice", models.RoleCustomer)

	registerProduct(t, app, manager, "widget", 10.0, 5)

	// A user with no cart ever created still gets an empty unpaid cart
	resp := doJSON(t, app, http.MethodGet, "/api/v1/carts/current", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.Cart
	decodeBody(t, resp, &cart)
	assert.Equal(t, "alice", cart.Customer)
	assert.False(t, cart.Paid)
	assert.Empty(t, cart.PaymentDate)
	assert.Zero(t, cart.Total)
	assert.Empty(t, cart.Items)

	// Add the widget, then view the cart
	resp = doJSON(t, app, http.MethodPost, "/api/v1/carts/", alice, map[string]string{"model": "widget"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/current", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "widget", cart.Items[0].Model)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 10.0, cart.Total)

	// Checkout succeeds and decrements catalog stock
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/carts/", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/widget", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var product models.Product
	decodeBody(t, resp, &product)
	assert.Equal(t, 4, product.Quantity)

	// The paid cart shows up in the history with today's date
	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/history", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.Cart
	decodeBody(t, resp, &history)
	require.Len(t, history, 1)
	assert.True(t, history[0].Paid)
	assert.Equal(t, time.Now().Format("2006-01-02"), history[0].PaymentDate)
	assert.Equal(t, 10.0, history[0].Total)

	// The current cart is a fresh empty one again
	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/current", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.False(t, cart.Paid)
	assert.Empty(t, cart.Items)
}

func TestCartEndpoints_ErrorStatusCodes(t *testing.T) {
	app := setupApp(t)
	manager := registerAndLogin(t, app, "mallory", models.RoleManager)
	alice := registerAndLogin(t, app, "alice", models.RoleCustomer)

	registerProduct(t, app, manager, "widget", 10.0, 1)

	// Checkout with no cart at all
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/carts/", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Adding an unknown product
	resp = doJSON(t, app, http.MethodPost, "/api/v1/carts/", alice, map[string]string{"model": "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The failed add created an empty cart; checkout on it is a 400
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/carts/", alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Removing a product that is not in the cart
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/carts/products/widget", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Out-of-stock product cannot be added at all
	resp = doJSON(t, app, http.MethodPost, "/api/v1/carts/", alice, map[string]string{"model": "widget"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/products/widget/sell", manager, map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/api/v1/carts/", alice, map[string]string{"model": "widget"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Checkout with stock gone after the add is a 409 and keeps the cart unpaid
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/carts/", alice, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/current", alice, nil)
	var cart models.Cart
	decodeBody(t, resp, &cart)
	assert.False(t, cart.Paid)
	assert.Len(t, cart.Items, 1)
}

func TestCartEndpoints_RoleEnforcement(t *testing.T) {
	app := setupApp(t)
	manager := registerAndLogin(t, app, "mallory", models.RoleManager)
	admin := registerAndLogin(t, app, "root", models.RoleAdmin)
	alice := registerAndLogin(t, app, "alice", models.RoleCustomer)

	// Managers cannot shop
	resp := doJSON(t, app, http.MethodGet, "/api/v1/carts/current", manager, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Customers cannot touch the catalog or the admin cart views
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products/", alice, map[string]interface{}{
		"model": "widget", "category": models.CategoryAppliance, "sellingPrice": 10.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/all", alice, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/carts/", alice, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unauthenticated requests are rejected outright
	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Admins can list and wipe every cart
	registerProduct(t, app, manager, "widget", 10.0, 5)
	resp = doJSON(t, app, http.MethodPost, "/api/v1/carts/", alice, map[string]string{"model": "widget"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/all", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Cart
	decodeBody(t, resp, &all)
	assert.Len(t, all, 1)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/carts/", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, http.MethodGet, "/api/v1/carts/all", admin, nil)
	decodeBody(t, resp, &all)
	assert.Empty(t, all)
}

func TestProductEndpoints_Validation(t *testing.T) {
	app := setupApp(t)
	manager := registerAndLogin(t, app, "mallory", models.RoleManager)

	// Unknown category fails struct validation
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/", manager, map[string]interface{}{
		"model": "widget", "category": "Furniture", "sellingPrice": 10.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Duplicate model is a conflict
	registerProduct(t, app, manager, "widget", 10.0, 1)
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products/", manager, map[string]interface{}{
		"model": "widget", "category": models.CategoryAppliance, "sellingPrice": 10.0, "quantity": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Future arrival date is rejected
	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products/", manager, map[string]interface{}{
		"model": "gadget", "category": models.CategoryAppliance, "sellingPrice": 10.0, "quantity": 1, "arrivalDate": future,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
