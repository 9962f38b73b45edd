package domain

import "time"

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// OpeningHours uses "HH:MM" local times.
type OpeningHours struct {
	Open  string `json:"open" bson:"open"`
	Close string `json:"close" bson:"close"`
}

// BusinessInfo is the merchant profile stored at businesses/{uid}/info/details.
// Status true marks setup as complete.
type BusinessInfo struct {
	BusinessName      string       `json:"businessName" bson:"businessName"`
	Barangay          string       `json:"barangay" bson:"barangay"`
	City              string       `json:"city" bson:"city"`
	ExactAddress      string       `json:"exactAddress" bson:"exactAddress"`
	Coordinates       Coordinates  `json:"coordinates" bson:"coordinates"`
	ImageURL          string       `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	PhoneNumber       string       `json:"phoneNumber" bson:"phoneNumber"`
	OpeningHours      OpeningHours `json:"openingHours" bson:"openingHours"`
	Status            bool         `json:"status" bson:"status"`
	OrderTypeDelivery bool         `json:"orderTypeDelivery" bson:"orderTypeDelivery"`
}

// FullAddress is the geocoding query for the profile.
func (b BusinessInfo) FullAddress() string {
	return b.ExactAddress + ", " + b.Barangay + ", " + b.City
}

type Category struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string `json:"name" bson:"name"`
	Icon      string `json:"icon" bson:"icon"`
	SortOrder int    `json:"sortOrder" bson:"sortOrder"`
}

type Product struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Category  string    `json:"category" bson:"category"`
	Price     float64   `json:"price" bson:"price"`
	ImageURL  string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Available bool      `json:"available" bson:"available"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// Reserved product categories referenced by service defaults.
const (
	CategoryDetergent         = "Detergent"
	CategoryFabricConditioner = "Fabric Conditioner"
)

// Service names a merchant can configure.
const (
	ServiceRegular = "Regular"
	ServicePremium = "Premium"
)

type Service struct {
	ID                         string   `json:"id,omitempty" bson:"_id,omitempty"`
	Name                       string   `json:"name" bson:"name"`
	Price                      float64  `json:"price" bson:"price"`
	Inclusions                 []string `json:"inclusions" bson:"inclusions"`
	DefaultDetergentID         string   `json:"defaultDetergentId" bson:"defaultDetergentId"`
	DefaultFabricConditionerID string   `json:"defaultFabricConditionerId" bson:"defaultFabricConditionerId"`
}

// SetupSummary is the read-only view of a completed business setup.
type SetupSummary struct {
	Info       *BusinessInfo `json:"info,omitempty"`
	Categories []Category    `json:"categories"`
	Products   []Product     `json:"products"`
	Services   []Service     `json:"services"`
}

// ProductOption is a selectable default product for a service.
type ProductOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OptionsFor returns the products in category usable as service defaults.
func OptionsFor(products []Product, category string) []ProductOption {
	out := make([]ProductOption, 0)
	for _, p := range products {
		if p.Category == category && p.ID != "" && p.Name != "" {
			out = append(out, ProductOption{ID: p.ID, Name: p.Name})
		}
	}
	return out
}
