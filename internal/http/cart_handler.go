package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.carts.CreateCart(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/carts/"+v.ID)
	writeJSON(w, http.StatusCreated, toCartResponse(v))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.carts.GetCart(r.Context(), chi.URLParam(r, "cartId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(v))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	item, err := h.carts.AddToCart(r.Context(), chi.URLParam(r, "cartId"), req.ProductID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartItemResponse(item))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(chi.URLParam(r, "productId"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	item, err := h.carts.UpdateCartItem(r.Context(), chi.URLParam(r, "cartId"), productID, *req.Quantity)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(item))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(chi.URLParam(r, "productId"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), chi.URLParam(r, "cartId"), productID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), chi.URLParam(r, "cartId")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
