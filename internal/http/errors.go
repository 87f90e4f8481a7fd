package httpapi

import (
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/user"
)

// writeServiceError maps service errors to status codes. Unknown errors are
// logged and reported as 500 without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		writeError(w, r, http.StatusNotFound, "Cart not found.")
	case errors.Is(err, cart.ErrItemNotInCart):
		writeError(w, r, http.StatusBadRequest, "Product not found in the cart.")
	case errors.Is(err, cart.ErrProductNotFound):
		writeError(w, r, http.StatusBadRequest, "Product not found in the cart.")
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, r, http.StatusBadRequest, "Quantity must be between 1 and 2147483647.")
	case errors.Is(err, cart.ErrVersionConflict):
		writeError(w, r, http.StatusConflict, "Cart was modified concurrently, please retry.")
	case errors.Is(err, cart.ErrUnavailable):
		h.logger.ErrorContext(r.Context(), "cart backend unavailable", "error", err)
		writeError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable.")

	case errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, r, http.StatusNotFound, "Product not found.")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		writeError(w, r, http.StatusBadRequest, "Category not found.")
	case errors.Is(err, catalog.ErrInvalidProduct):
		writeError(w, r, http.StatusBadRequest, err.Error())

	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "User not found.")
	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, r, http.StatusBadRequest, "Email already registered.")
	case errors.Is(err, user.ErrInvalidOldPassword):
		writeError(w, r, http.StatusUnauthorized, "The current password you entered is incorrect.")
	case errors.Is(err, user.ErrInvalidUser):
		writeError(w, r, http.StatusBadRequest, err.Error())

	default:
		h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
