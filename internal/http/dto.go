package httpapi

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/user"
)

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// money renders amounts as JSON numbers with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type cartItemResponse struct {
	ProductID  int64       `json:"productId"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unitPrice"`
	TotalPrice json.Number `json:"totalPrice"`
}

type cartResponse struct {
	ID         string             `json:"id"`
	Items      []cartItemResponse `json:"items"`
	TotalPrice json.Number        `json:"totalPrice"`
}

func toCartItemResponse(v cart.ItemView) cartItemResponse {
	return cartItemResponse{
		ProductID:  v.ProductID,
		Quantity:   v.Quantity,
		UnitPrice:  money(v.UnitPrice),
		TotalPrice: money(v.TotalPrice),
	}
}

func toCartResponse(v cart.View) cartResponse {
	resp := cartResponse{
		ID:         v.ID,
		Items:      make([]cartItemResponse, 0, len(v.Items)),
		TotalPrice: money(v.TotalPrice),
	}
	for _, it := range v.Items {
		resp.Items = append(resp.Items, toCartItemResponse(it))
	}
	return resp
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type productDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	CategoryID  *int16      `json:"categoryId"`
}

func toProductDTO(p catalog.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		CategoryID:  p.CategoryID,
	}
}

func (d productDTO) toProduct() (catalog.Product, error) {
	price := decimal.Zero
	if d.Price != "" {
		var err error
		if price, err = decimal.NewFromString(d.Price.String()); err != nil {
			return catalog.Product{}, err
		}
	}
	return catalog.Product{
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		CategoryID:  d.CategoryID,
	}, nil
}

type categoryDTO struct {
	ID   int16  `json:"id"`
	Name string `json:"name"`
}

type userDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserDTO(u user.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
