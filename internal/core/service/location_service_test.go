package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

func TestLocationService_CitiesSorted(t *testing.T) {
	dirs := &stubDivisions{cities: []ports.Division{{Code: "2", Name: "Taguig"}, {Code: "1", Name: "Makati"}}}
	svc := NewLocationService(dirs, &stubGeocoder{}, zerolog.Nop())

	cities, err := svc.Cities(context.Background())
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if cities[0].Name != "Makati" || cities[1].Name != "Taguig" {
		t.Fatalf("expected sorted cities, got %+v", cities)
	}
}

func TestLocationService_Barangays(t *testing.T) {
	dirs := &stubDivisions{barangays: map[string][]ports.Division{"1": {{Code: "b2", Name: "San Lorenzo"}, {Code: "b1", Name: "Bel-Air"}}}}
	svc := NewLocationService(dirs, &stubGeocoder{}, zerolog.Nop())

	if _, err := svc.Barangays(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	brgys, err := svc.Barangays(context.Background(), "1")
	if err != nil || brgys[0].Name != "Bel-Air" {
		t.Fatalf("unexpected barangays %+v err=%v", brgys, err)
	}
	if _, err := svc.Barangays(context.Background(), "404"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestLocationService_Resolve(t *testing.T) {
	geo := &stubGeocoder{coords: domain.Coordinates{Lat: 1, Lng: 2}}
	svc := NewLocationService(&stubDivisions{}, geo, zerolog.Nop())

	c, err := svc.Resolve(context.Background(), "12 Rizal St")
	if err != nil || c.Lat != 1 {
		t.Fatalf("unexpected coords %+v err=%v", c, err)
	}
	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
