// Package app owns the client-side orchestration: the state machine driving
// search, selection, forecast loading, unit changes, and saved-place
// persistence.
package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/skycast-app/skycast/internal/forecast"
	"github.com/skycast-app/skycast/internal/geo"
	"github.com/skycast-app/skycast/internal/owm"
	"github.com/skycast-app/skycast/internal/store"
)

// PlaceResolver is the geocoding surface the controller drives.
type PlaceResolver interface {
	Search(ctx context.Context, query string) ([]geo.PlaceCandidate, error)
	Locate(ctx context.Context, lat, lon float64) (geo.PlaceCandidate, error)
}

// ForecastFetcher loads the normalized forecast bundle for a coordinate.
type ForecastFetcher interface {
	Bundle(ctx context.Context, lat, lon float64, units forecast.Units) (forecast.Bundle, error)
}

// Controller is the single owner of AppState. Operations overlap when callers
// race; each operation takes a generation ticket and a response whose
// generation is no longer current is discarded instead of clobbering newer
// state.
type Controller struct {
	mu    sync.Mutex
	state AppState
	gen   uint64

	places     PlaceResolver
	forecasts  ForecastFetcher
	prefs      *store.Prefs
	locator    Locator
	locTimeout time.Duration
}

// NewController builds a controller with persisted preferences loaded.
// locator may be nil when the environment has no geolocation capability.
func NewController(places PlaceResolver, forecasts ForecastFetcher, prefs *store.Prefs, locator Locator, locTimeout time.Duration) *Controller {
	if locTimeout <= 0 {
		locTimeout = 15 * time.Second
	}
	return &Controller{
		state: AppState{
			Query: "Abuja,NG",
			Units: forecast.UnitsMetric,
			Theme: Theme(prefs.Theme()),
			Saved: prefs.SavedPlaces(),
			Phase: PhaseIdle,
		},
		places:     places,
		forecasts:  forecasts,
		prefs:      prefs,
		locator:    locator,
		locTimeout: locTimeout,
	}
}

// State returns a copy of the current state. Slices are copied so callers
// cannot mutate controller-owned data.
func (c *Controller) State() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Results = append([]geo.PlaceCandidate(nil), c.state.Results...)
	s.Saved = append([]geo.PlaceCandidate(nil), c.state.Saved...)
	if c.state.Selected != nil {
		sel := *c.state.Selected
		s.Selected = &sel
	}
	if c.state.Forecast != nil {
		fc := *c.state.Forecast
		s.Forecast = &fc
	}
	return s
}

// Search clears prior results, selection, forecast and error, then issues a
// geocode. Zero candidates is not a failure; it surfaces an informational
// message alongside the (empty) results.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	g := c.nextGenLocked()
	c.state.Query = query
	c.state.Results = nil
	c.state.Selected = nil
	c.state.Forecast = nil
	c.state.Err = ""
	c.state.Loading = true
	c.state.Phase = PhaseSearching
	c.mu.Unlock()

	results, err := c.places.Search(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if g != c.gen {
		return nil
	}
	c.state.Loading = false
	if err != nil {
		c.state.Phase = PhaseError
		c.state.Err = errText(err)
		return err
	}
	c.state.Results = results
	c.state.Phase = PhaseResults
	if len(results) == 0 {
		c.state.Err = msgNoResults
	}
	return nil
}

// Select loads the forecast for a candidate under the current units. With
// autoSave the candidate joins the saved list on success.
func (c *Controller) Select(ctx context.Context, place geo.PlaceCandidate, autoSave bool) error {
	c.mu.Lock()
	g := c.nextGenLocked()
	units := c.beginSelectLocked(place)
	c.mu.Unlock()

	return c.loadForecast(ctx, g, place, units, autoSave)
}

// ChangeUnits switches the unit system. A selected place triggers a full
// refetch under the new units; previously fetched temperatures are never
// converted client-side.
func (c *Controller) ChangeUnits(ctx context.Context, units forecast.Units) error {
	c.mu.Lock()
	c.state.Units = units
	if c.state.Selected == nil {
		c.mu.Unlock()
		return nil
	}
	place := *c.state.Selected
	g := c.nextGenLocked()
	c.beginSelectLocked(place)
	c.mu.Unlock()

	return c.loadForecast(ctx, g, place, units, false)
}

// UseMyLocation asks the geolocation capability for a fix, reverse-geocodes
// it, and selects the resulting place with auto-save. Permission denial and a
// missing capability produce distinct messages.
func (c *Controller) UseMyLocation(ctx context.Context) error {
	c.mu.Lock()
	if c.locator == nil {
		c.state.Err = msgGeoUnsupported
		c.state.Phase = PhaseError
		c.mu.Unlock()
		return ErrUnavailable
	}
	g := c.nextGenLocked()
	c.state.Err = ""
	c.state.Results = nil
	c.state.Forecast = nil
	c.state.Loading = true
	c.mu.Unlock()

	posCtx, cancel := context.WithTimeout(ctx, c.locTimeout)
	pos, err := c.locator.CurrentPosition(posCtx)
	cancel()
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if g != c.gen {
			return nil
		}
		c.state.Loading = false
		c.state.Phase = PhaseError
		if errors.Is(err, ErrPermissionDenied) {
			c.state.Err = msgPermissionDenied
		} else {
			c.state.Err = msgLocationFailed
		}
		return err
	}

	// Locate falls back to a sentinel candidate when the provider has nothing
	// usable for the coordinate, so an upstream error still yields a place.
	place, err := c.places.Locate(ctx, pos.Lat, pos.Lon)
	if err != nil {
		var ue *owm.UpstreamError
		if !errors.As(err, &ue) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if g != c.gen {
				return nil
			}
			c.state.Loading = false
			c.state.Phase = PhaseError
			c.state.Err = msgLocationWeather
			return err
		}
	}

	c.mu.Lock()
	if g != c.gen {
		c.mu.Unlock()
		return nil
	}
	g = c.nextGenLocked()
	units := c.beginSelectLocked(place)
	c.mu.Unlock()

	return c.loadForecast(ctx, g, place, units, true)
}

// SavePlace appends a candidate to the saved list, most-recently-added first.
// A candidate whose (lat, lon) is already present leaves the list unchanged;
// exceeding the cap drops the oldest entry.
func (c *Controller) SavePlace(place geo.PlaceCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.savePlaceLocked(place)
}

// RemoveSaved deletes the entry matching the candidate's (lat, lon).
func (c *Controller) RemoveSaved(place geo.PlaceCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.state.Saved[:0:0]
	for _, p := range c.state.Saved {
		if !p.SameLocation(place) {
			kept = append(kept, p)
		}
	}
	c.state.Saved = kept
	c.persistSavedLocked()
}

// SavedPlaces returns a copy of the saved list.
func (c *Controller) SavedPlaces() []geo.PlaceCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]geo.PlaceCandidate(nil), c.state.Saved...)
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Theme
}

// SetTheme persists a theme choice. Unknown values are ignored.
func (c *Controller) SetTheme(theme Theme) {
	if theme != ThemeLight && theme != ThemeDark {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Theme = theme
	if err := c.prefs.SetTheme(string(theme)); err != nil {
		log.Printf("persisting theme failed: %v", err)
	}
}

// ToggleTheme flips between light and dark and persists the result.
func (c *Controller) ToggleTheme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Theme == ThemeDark {
		c.state.Theme = ThemeLight
	} else {
		c.state.Theme = ThemeDark
	}
	if err := c.prefs.SetTheme(string(c.state.Theme)); err != nil {
		log.Printf("persisting theme failed: %v", err)
	}
	return c.state.Theme
}

func (c *Controller) nextGenLocked() uint64 {
	c.gen++
	return c.gen
}

func (c *Controller) beginSelectLocked(place geo.PlaceCandidate) forecast.Units {
	p := place
	c.state.Selected = &p
	c.state.Forecast = nil
	c.state.Err = ""
	c.state.Loading = true
	c.state.Phase = PhaseLoadingForecast
	return c.state.Units
}

func (c *Controller) loadForecast(ctx context.Context, g uint64, place geo.PlaceCandidate, units forecast.Units, autoSave bool) error {
	bundle, err := c.forecasts.Bundle(ctx, place.Lat, place.Lon, units)

	c.mu.Lock()
	defer c.mu.Unlock()
	if g != c.gen {
		return nil
	}
	c.state.Loading = false
	if err != nil {
		c.state.Phase = PhaseError
		c.state.Err = errText(err)
		return err
	}
	c.state.Forecast = &bundle
	c.state.Phase = PhaseForecastShown
	if autoSave {
		c.savePlaceLocked(place)
	}
	return nil
}

func (c *Controller) savePlaceLocked(place geo.PlaceCandidate) {
	for _, p := range c.state.Saved {
		if p.SameLocation(place) {
			return
		}
	}
	saved := append([]geo.PlaceCandidate{place}, c.state.Saved...)
	if len(saved) > store.MaxSavedPlaces {
		saved = saved[:store.MaxSavedPlaces]
	}
	c.state.Saved = saved
	c.persistSavedLocked()
}

func (c *Controller) persistSavedLocked() {
	if err := c.prefs.SetSavedPlaces(c.state.Saved); err != nil {
		log.Printf("persisting saved places failed: %v", err)
	}
}

// errText surfaces upstream failure bodies verbatim for diagnostics.
func errText(err error) string {
	var ue *owm.UpstreamError
	if errors.As(err, &ue) && len(ue.Body) > 0 {
		return string(ue.Body)
	}
	return err.Error()
}
