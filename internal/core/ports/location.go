package ports

import (
	"context"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Division is a city or barangay in the administrative hierarchy.
type Division struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	ProvinceName string `json:"provinceName,omitempty"`
}

// DivisionDirectory lists administrative divisions.
type DivisionDirectory interface {
	Cities(ctx context.Context) ([]Division, error)
	Barangays(ctx context.Context, cityCode string) ([]Division, error)
}
