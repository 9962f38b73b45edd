package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

type stubLocations struct {
	gotCity string
}

func (s *stubLocations) Cities(context.Context) ([]ports.Division, error) {
	return []ports.Division{{Code: "1", Name: "Makati"}}, nil
}

func (s *stubLocations) Barangays(_ context.Context, code string) ([]ports.Division, error) {
	s.gotCity = code
	return []ports.Division{{Code: "b1", Name: "Poblacion"}}, nil
}

func (s *stubLocations) Resolve(_ context.Context, address string) (domain.Coordinates, error) {
	if address == "" {
		return domain.Coordinates{}, &domain.ValidationError{Fields: []string{"address"}, Msg: "address is required"}
	}
	return domain.Coordinates{Lat: 1, Lng: 2}, nil
}

func TestLocationHandler_Barangays(t *testing.T) {
	e := echo.New()
	stub := &stubLocations{}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/locations/cities/137602000/barangays", nil), rec)
	c.SetParamNames("code")
	c.SetParamValues("137602000")

	if err := NewLocationHandler(stub).Barangays(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.gotCity != "137602000" {
		t.Fatalf("unexpected city code %q", stub.gotCity)
	}
	var resp divisionsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Items) != 1 || resp.Items[0].Name != "Poblacion" {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
}

func TestLocationHandler_Geocode(t *testing.T) {
	e := echo.New()
	h := NewLocationHandler(&stubLocations{})

	rec := httptest.NewRecorder()
	if err := h.Geocode(e.NewContext(httptest.NewRequest(http.MethodGet, "/locations/geocode?address=Makati", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var coords domain.Coordinates
	_ = json.Unmarshal(rec.Body.Bytes(), &coords)
	if coords.Lat != 1 || coords.Lng != 2 {
		t.Fatalf("unexpected coordinates %+v", coords)
	}

	err := h.Geocode(e.NewContext(httptest.NewRequest(http.MethodGet, "/locations/geocode", nil), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
