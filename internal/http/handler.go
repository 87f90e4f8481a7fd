package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/user"
)

type CartService interface {
	CreateCart(ctx context.Context) (cart.View, error)
	GetCart(ctx context.Context, cartID string) (cart.View, error)
	AddToCart(ctx context.Context, cartID string, productID int64) (cart.ItemView, error)
	UpdateCartItem(ctx context.Context, cartID string, productID int64, quantity int) (cart.ItemView, error)
	RemoveItem(ctx context.Context, cartID string, productID int64) error
	ClearCart(ctx context.Context, cartID string) error
}

type CatalogService interface {
	ListProducts(ctx context.Context, categoryID *int16) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id int64, p catalog.Product) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

type UserService interface {
	ListUsers(ctx context.Context, sortBy string) ([]user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	RegisterUser(ctx context.Context, req user.RegisterRequest) (user.User, error)
	UpdateUser(ctx context.Context, id int64, req user.UpdateRequest) (user.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
}

type Handler struct {
	carts    CartService
	products CatalogService
	users    UserService
	logger   *slog.Logger
}

func NewHandler(carts CartService, products CatalogService, users UserService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{carts: carts, products: products, users: users, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:         msg,
		CorrelationID: correlationIDFrom(r.Context()),
	})
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
