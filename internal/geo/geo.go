package geo

import (
	"context"
	"fmt"
)

// SentinelName is used for a reverse-geocoded position the provider could not label.
const SentinelName = "My location"

// MaxCandidates caps how many candidates a forward geocode returns.
const MaxCandidates = 5

// PlaceCandidate is a resolved place returned by geocoding.
// Identity for de-duplication is the (Lat, Lon) pair, not the name.
type PlaceCandidate struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// SameLocation reports whether two candidates refer to the same place.
func (p PlaceCandidate) SameLocation(o PlaceCandidate) bool {
	return p.Lat == o.Lat && p.Lon == o.Lon
}

// Label renders the candidate for display, e.g. "Lagos, Lagos State — NG".
func (p PlaceCandidate) Label() string {
	if p.State != "" {
		return fmt.Sprintf("%s, %s — %s", p.Name, p.State, p.Country)
	}
	return fmt.Sprintf("%s — %s", p.Name, p.Country)
}

// Geocoder abstracts the upstream geocoding provider.
type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) ([]PlaceCandidate, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]PlaceCandidate, error)
}

// Adapter is a thin translation layer over the geocoding provider. It adds no
// business logic beyond candidate capping and sentinel defaulting.
type Adapter struct {
	gc             Geocoder
	defaultCountry string
}

func NewAdapter(gc Geocoder, defaultCountry string) *Adapter {
	return &Adapter{gc: gc, defaultCountry: defaultCountry}
}

// Search resolves a free-text place query into provider-ranked candidates.
func (a *Adapter) Search(ctx context.Context, query string) ([]PlaceCandidate, error) {
	candidates, err := a.gc.Geocode(ctx, query, MaxCandidates)
	if err != nil {
		return nil, err
	}
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates, nil
}

// Locate reverse-geocodes a coordinate into a single candidate. When the
// provider returns nothing usable, unresolved fields default to sentinels and
// the raw coordinates are kept.
func (a *Adapter) Locate(ctx context.Context, lat, lon float64) (PlaceCandidate, error) {
	fallback := PlaceCandidate{Name: SentinelName, Lat: lat, Lon: lon, Country: a.defaultCountry}

	candidates, err := a.gc.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return fallback, err
	}
	if len(candidates) == 0 {
		return fallback, nil
	}

	c := candidates[0]
	if c.Name == "" {
		c.Name = SentinelName
	}
	if c.Country == "" {
		c.Country = a.defaultCountry
	}
	if c.Lat == 0 && c.Lon == 0 {
		c.Lat, c.Lon = lat, lon
	}
	return c, nil
}
