package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int16
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 16)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid categoryId")
			return
		}
		id := int16(v)
		categoryID = &id
	}

	products, err := h.products.ListProducts(r.Context(), categoryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := make([]productDTO, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := req.toProduct()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid price")
		return
	}

	created, err := h.products.CreateProduct(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/products/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, toProductDTO(created))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	var req productDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := req.toProduct()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid price")
		return
	}

	updated, err := h.products.UpdateProduct(r.Context(), id, p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(updated))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.products.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, categoryDTO{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}
