package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// SetupBusinessInput is the POST /businesses/setup payload.
type SetupBusinessInput = domain.BusinessInfo

// CreateCategoryInput is the POST /businesses/categories payload.
type CreateCategoryInput struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sortOrder"`
}

// CreateProductInput is the POST /businesses/{merchantId}/products payload.
type CreateProductInput struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Available bool    `json:"available"`
}

// UpdateServiceInput is the PATCH /businesses/{merchantId}/services/serviceId/{name} payload.
type UpdateServiceInput struct {
	ServiceID                  string   `json:"serviceId,omitempty"`
	Name                       string   `json:"name"`
	Price                      float64  `json:"price"`
	Inclusions                 []string `json:"inclusions"`
	DefaultDetergentID         string   `json:"defaultDetergentId"`
	DefaultFabricConditionerID string   `json:"defaultFabricConditionerId"`
}

// Backend is the bearer-authenticated REST API.
type Backend interface {
	AcceptOrder(ctx context.Context, orderID string) (*domain.AcceptResult, error)
	MerchantOrders(ctx context.Context) ([]domain.Order, error)
	SetupBusiness(ctx context.Context, in SetupBusinessInput) error
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*domain.Category, error)
	CreateProduct(ctx context.Context, merchantID string, in CreateProductInput) (*domain.Product, error)
	Products(ctx context.Context, merchantID string) ([]domain.Product, error)
	UpdateService(ctx context.Context, merchantID string, in UpdateServiceInput) (*domain.Service, error)
}
