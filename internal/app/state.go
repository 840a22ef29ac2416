package app

import (
	"context"
	"errors"

	"github.com/skycast-app/skycast/internal/forecast"
	"github.com/skycast-app/skycast/internal/geo"
)

// Phase is the orchestrator's position in the search → select → fetch →
// display flow. Error is reachable from any network-issuing phase.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseSearching       Phase = "searching"
	PhaseResults         Phase = "results-shown"
	PhaseLoadingForecast Phase = "loading-forecast"
	PhaseForecastShown   Phase = "forecast-shown"
	PhaseError           Phase = "error"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// AppState is the UI-facing session state. Theme and Saved persist across
// sessions; everything else resets as searches and selections come and go.
type AppState struct {
	Query    string
	Units    forecast.Units
	Theme    Theme
	Results  []geo.PlaceCandidate
	Selected *geo.PlaceCandidate
	Forecast *forecast.Bundle
	Saved    []geo.PlaceCandidate
	Loading  bool
	Err      string
	Phase    Phase
}

// Position is a geolocation fix.
type Position struct {
	Lat float64
	Lon float64
}

// Locator is the geolocation capability. Implementations must respect the
// context deadline the controller applies.
type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

var (
	// ErrPermissionDenied means the user refused the position request.
	ErrPermissionDenied = errors.New("geolocation permission denied")
	// ErrUnavailable means no geolocation capability exists in this environment.
	ErrUnavailable = errors.New("geolocation unavailable")
)

// User-facing messages for the error and informational states.
const (
	msgNoResults        = "No results found. Try: Lagos,NG or Abuja,NG"
	msgGeoUnsupported   = "Geolocation is not supported in this environment."
	msgPermissionDenied = "Location permission denied."
	msgLocationFailed   = "Failed to get location."
	msgLocationWeather  = "Failed to load location weather"
)
