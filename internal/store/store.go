// Package store persists client preferences: the theme choice and the
// saved-places list. Two independent keys in a durable key-value table.
package store

import (
	"encoding/json"
	"log"

	"github.com/skycast-app/skycast/internal/geo"
)

// KV is the minimal durable key-value contract the preference layer needs.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

const (
	themeKey  = "theme"
	placesKey = "saved_places_v1"

	// MaxSavedPlaces caps the saved-places list.
	MaxSavedPlaces = 12

	// DefaultTheme is the fallback when no theme was ever persisted or the
	// stored value is unusable.
	DefaultTheme = "light"
)

// Prefs reads and writes the two persisted preference keys. Absent or corrupt
// stored values fall back to defaults without surfacing an error.
type Prefs struct {
	kv KV
}

func NewPrefs(kv KV) *Prefs {
	return &Prefs{kv: kv}
}

// Theme returns the persisted theme, or DefaultTheme when absent or invalid.
func (p *Prefs) Theme() string {
	v, ok, err := p.kv.Get(themeKey)
	if err != nil {
		log.Printf("prefs: reading theme failed: %v", err)
		return DefaultTheme
	}
	if !ok || (v != "light" && v != "dark") {
		return DefaultTheme
	}
	return v
}

// SetTheme persists the theme. Invalid values are ignored.
func (p *Prefs) SetTheme(theme string) error {
	if theme != "light" && theme != "dark" {
		return nil
	}
	return p.kv.Set(themeKey, theme)
}

// SavedPlaces returns the persisted list, most-recently-added first. Corrupt
// or absent data yields an empty list.
func (p *Prefs) SavedPlaces() []geo.PlaceCandidate {
	v, ok, err := p.kv.Get(placesKey)
	if err != nil {
		log.Printf("prefs: reading saved places failed: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var places []geo.PlaceCandidate
	if err := json.Unmarshal([]byte(v), &places); err != nil {
		log.Printf("prefs: saved places entry is corrupt, falling back to empty: %v", err)
		return nil
	}
	if len(places) > MaxSavedPlaces {
		places = places[:MaxSavedPlaces]
	}
	return places
}

// SetSavedPlaces persists the list as JSON.
func (p *Prefs) SetSavedPlaces(places []geo.PlaceCandidate) error {
	if places == nil {
		places = []geo.PlaceCandidate{}
	}
	raw, err := json.Marshal(places)
	if err != nil {
		return err
	}
	return p.kv.Set(placesKey, string(raw))
}
