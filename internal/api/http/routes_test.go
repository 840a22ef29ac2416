package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skycast-app/skycast/internal/app"
	"github.com/skycast-app/skycast/internal/forecast"
	"github.com/skycast-app/skycast/internal/geo"
	"github.com/skycast-app/skycast/internal/owm"
	"github.com/skycast-app/skycast/internal/store"
)

type fakePlaces struct {
	searchResult []geo.PlaceCandidate
	searchErr    error
	locateResult geo.PlaceCandidate
	locateErr    error
}

func (f *fakePlaces) Search(context.Context, string) ([]geo.PlaceCandidate, error) {
	return f.searchResult, f.searchErr
}

func (f *fakePlaces) Locate(context.Context, float64, float64) (geo.PlaceCandidate, error) {
	return f.locateResult, f.locateErr
}

type fakeForecasts struct {
	bundle forecast.Bundle
	err    error

	lastUnits forecast.Units
}

func (f *fakeForecasts) Bundle(_ context.Context, _, _ float64, units forecast.Units) (forecast.Bundle, error) {
	f.lastUnits = units
	return f.bundle, f.err
}

func newTestApp(places app.PlaceResolver, forecasts app.ForecastFetcher) (*fiber.App, *app.Controller) {
	fapp := fiber.New()
	ctrl := app.NewController(places, forecasts, store.NewPrefs(store.NewMemoryKV()), nil, time.Second)
	RegisterRoutes(fapp, places, forecasts, ctrl)
	return fapp, ctrl
}

func doRequest(t *testing.T, fapp *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := fapp.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func TestGeocodeMissingQuery(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/geocode", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestGeocodeMissingAPIKey(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{searchErr: owm.ErrMissingAPIKey}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/geocode?q=Lagos", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload["error"] != "Missing API key" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
	if _, ok := payload["details"]; ok {
		t.Fatal("a configuration error must not expose upstream details")
	}
}

func TestGeocodeSuccess(t *testing.T) {
	places := &fakePlaces{searchResult: []geo.PlaceCandidate{
		{Name: "Lagos", Lat: 6.52, Lon: 3.37, Country: "NG", State: "Lagos"},
	}}
	fapp, _ := newTestApp(places, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/geocode?q=Lagos", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got []geo.PlaceCandidate
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Lagos" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestGeocodeEmptyResultIsAnEmptyArray(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/geocode?q=Atlantis", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("zero matches is a success, got status %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", body)
	}
}

func TestReverseMissingCoordinates(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	for _, target := range []string{"/api/v1/reverse", "/api/v1/reverse?lat=9.05", "/api/v1/reverse?lon=7.49"} {
		resp := doRequest(t, fapp, http.MethodGet, target, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, resp.StatusCode)
		}
	}
}

func TestReverseUpstreamErrorPassesStatusThrough(t *testing.T) {
	places := &fakePlaces{
		locateErr: &owm.UpstreamError{Status: 429, Body: []byte(`{"cod":429}`)},
	}
	fapp, _ := newTestApp(places, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/reverse?lat=9.05&lon=7.49", "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected upstream status passed through, got %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload["error"] != "OpenWeather reverse geocode failed" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
	if payload["details"] == nil {
		t.Fatal("expected upstream details attached")
	}
}

func TestReverseReturnsSingletonList(t *testing.T) {
	places := &fakePlaces{locateResult: geo.PlaceCandidate{Name: "Garki", Lat: 9.05, Lon: 7.49, Country: "NG"}}
	fapp, _ := newTestApp(places, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/reverse?lat=9.05&lon=7.49", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got []geo.PlaceCandidate
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Garki" {
		t.Fatalf("expected a single candidate, got %+v", got)
	}
}

func TestForecastMissingCoordinates(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/forecast?lat=9.05", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestForecastCurrentFailurePassesStatusThrough(t *testing.T) {
	forecasts := &fakeForecasts{
		err: fmt.Errorf("%w: %w", forecast.ErrCurrentFetch,
			&owm.UpstreamError{Status: 401, Body: []byte(`{"cod":401}`)}),
	}
	fapp, _ := newTestApp(&fakePlaces{}, forecasts)

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/forecast?lat=9.05&lon=7.49", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected upstream 401 passed through, got %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload["error"] != "Current weather fetch failed" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestForecastSuccessAndUnitsDefault(t *testing.T) {
	forecasts := &fakeForecasts{bundle: forecast.Bundle{Source: forecast.SourceTag}}
	fapp, _ := newTestApp(&fakePlaces{}, forecasts)

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/forecast?lat=9.05&lon=7.49", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if forecasts.lastUnits != forecast.UnitsMetric {
		t.Fatalf("expected metric default, got %q", forecasts.lastUnits)
	}

	var got forecast.Bundle
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Source != forecast.SourceTag {
		t.Fatalf("expected source tag, got %q", got.Source)
	}
}

func TestForecastImperialUnits(t *testing.T) {
	forecasts := &fakeForecasts{}
	fapp, _ := newTestApp(&fakePlaces{}, forecasts)

	doRequest(t, fapp, http.MethodGet, "/api/v1/forecast?lat=9.05&lon=7.49&units=imperial", "")
	if forecasts.lastUnits != forecast.UnitsImperial {
		t.Fatalf("expected imperial, got %q", forecasts.lastUnits)
	}
}

func TestPlacesLifecycle(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodPost, "/api/v1/places",
		`{"name":"Abuja","lat":9.05,"lon":7.49,"country":"NG"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp = doRequest(t, fapp, http.MethodGet, "/api/v1/places", "")
	var got []geo.PlaceCandidate
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Abuja" {
		t.Fatalf("unexpected saved places: %+v", got)
	}

	resp = doRequest(t, fapp, http.MethodDelete, "/api/v1/places?lat=9.05&lon=7.49", "")
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", got)
	}
}

func TestPlacesValidation(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodPost, "/api/v1/places", `{"name":"Abuja"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing coordinates, got %d", resp.StatusCode)
	}
}

func TestThemeRoundTrip(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodGet, "/api/v1/prefs/theme", "")
	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got["theme"] != "light" {
		t.Fatalf("expected light default, got %q", got["theme"])
	}

	resp = doRequest(t, fapp, http.MethodPut, "/api/v1/prefs/theme", `{"theme":"dark"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, fapp, http.MethodGet, "/api/v1/prefs/theme", "")
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got["theme"] != "dark" {
		t.Fatalf("expected persisted theme, got %q", got["theme"])
	}
}

func TestThemeValidation(t *testing.T) {
	fapp, _ := newTestApp(&fakePlaces{}, &fakeForecasts{})

	resp := doRequest(t, fapp, http.MethodPut, "/api/v1/prefs/theme", `{"theme":"neon"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid theme, got %d", resp.StatusCode)
	}
}
