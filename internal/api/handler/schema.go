package handler

import (
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Phone     string `json:"phone"      validate:"required"`
	Password  string `json:"password"   validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// --- Cart ---

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity,omitempty"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type totalResponse struct {
	TotalPrice float64 `json:"total_price"`
}

type productSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"image_url,omitempty"`
}

type cartLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   *productSummary `json:"product"`
	LineTotal float64         `json:"line_total"`
}

type cartResponse struct {
	UserID     string             `json:"user_id"`
	Items      []cartLineResponse `json:"items"`
	TotalPrice float64            `json:"total_price"`
}

func toCartResponse(v *ports.CartView) cartResponse {
	resp := cartResponse{
		UserID:     v.UserID,
		Items:      make([]cartLineResponse, 0, len(v.Items)),
		TotalPrice: v.TotalPrice,
	}
	for _, line := range v.Items {
		item := cartLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		}
		if p := line.Product; p != nil {
			item.Product = &productSummary{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				Stock:    p.Stock,
				ImageURL: p.ImageURL,
			}
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
