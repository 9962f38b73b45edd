package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// LocationService backs the city and barangay pickers and address lookups.
type LocationService struct {
	divisions ports.DivisionDirectory
	geocoder  ports.Geocoder
	logger    zerolog.Logger
}

func NewLocationService(divisions ports.DivisionDirectory, geocoder ports.Geocoder, logger zerolog.Logger) *LocationService {
	return &LocationService{divisions: divisions, geocoder: geocoder, logger: logger}
}

// Cities lists the cities of the configured region sorted by name.
func (s *LocationService) Cities(ctx context.Context) ([]ports.Division, error) {
	cities, err := s.divisions.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("cities: %w", err)
	}
	sortDivisions(cities)
	return cities, nil
}

// Barangays lists the barangays of one city sorted by name.
func (s *LocationService) Barangays(ctx context.Context, cityCode string) ([]ports.Division, error) {
	cityCode = strings.TrimSpace(cityCode)
	if cityCode == "" {
		return nil, &domain.ValidationError{Fields: []string{"code"}, Msg: "city code is required"}
	}
	brgys, err := s.divisions.Barangays(ctx, cityCode)
	if err != nil {
		return nil, fmt.Errorf("barangays of %s: %w", cityCode, err)
	}
	sortDivisions(brgys)
	return brgys, nil
}

// Resolve geocodes a free-form address.
func (s *LocationService) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, &domain.ValidationError{Fields: []string{"address"}, Msg: "address is required"}
	}
	c, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Warn().Err(err).Str("address", address).Msg("geocode failed")
		return domain.Coordinates{}, err
	}
	return c, nil
}

func sortDivisions(d []ports.Division) {
	sort.Slice(d, func(i, j int) bool { return d[i].Name < d[j].Name })
}
