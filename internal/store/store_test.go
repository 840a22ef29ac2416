package store

import (
	"path/filepath"
	"testing"

	"github.com/skycast-app/skycast/internal/geo"
)

func openTestKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSavedPlacesRoundTrip(t *testing.T) {
	kv := openTestKV(t)
	prefs := NewPrefs(kv)

	places := []geo.PlaceCandidate{
		{Name: "Abuja", Lat: 9.05, Lon: 7.49, Country: "NG"},
		{Name: "Lagos", Lat: 6.52, Lon: 3.37, Country: "NG", State: "Lagos"},
	}
	if err := prefs.SetSavedPlaces(places); err != nil {
		t.Fatalf("persisting places: %v", err)
	}

	got := prefs.SavedPlaces()
	if len(got) != 2 {
		t.Fatalf("expected 2 places, got %d", len(got))
	}
	if got[0] != places[0] || got[1] != places[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestThemeRoundTrip(t *testing.T) {
	kv := openTestKV(t)
	prefs := NewPrefs(kv)

	if got := prefs.Theme(); got != DefaultTheme {
		t.Fatalf("expected default theme before any write, got %q", got)
	}
	if err := prefs.SetTheme("dark"); err != nil {
		t.Fatalf("persisting theme: %v", err)
	}
	if got := prefs.Theme(); got != "dark" {
		t.Fatalf("expected persisted theme, got %q", got)
	}
}

func TestCorruptStoredDataFallsBack(t *testing.T) {
	kv := openTestKV(t)
	prefs := NewPrefs(kv)

	if err := kv.Set("saved_places_v1", "{not json"); err != nil {
		t.Fatalf("seeding corrupt value: %v", err)
	}
	if err := kv.Set("theme", "neon"); err != nil {
		t.Fatalf("seeding corrupt value: %v", err)
	}

	if got := prefs.SavedPlaces(); len(got) != 0 {
		t.Fatalf("expected empty list for corrupt data, got %+v", got)
	}
	if got := prefs.Theme(); got != DefaultTheme {
		t.Fatalf("expected default theme for invalid value, got %q", got)
	}
}

func TestSavedPlacesAbsentYieldsEmpty(t *testing.T) {
	prefs := NewPrefs(NewMemoryKV())
	if got := prefs.SavedPlaces(); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestSavedPlacesTrimmedToCap(t *testing.T) {
	kv := NewMemoryKV()
	prefs := NewPrefs(kv)

	var places []geo.PlaceCandidate
	for i := 0; i < MaxSavedPlaces+3; i++ {
		places = append(places, geo.PlaceCandidate{Name: "P", Lat: float64(i), Lon: float64(i)})
	}
	if err := prefs.SetSavedPlaces(places); err != nil {
		t.Fatalf("persisting places: %v", err)
	}
	if got := prefs.SavedPlaces(); len(got) != MaxSavedPlaces {
		t.Fatalf("expected list trimmed to %d, got %d", MaxSavedPlaces, len(got))
	}
}

func TestSQLiteOverwrite(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Set("theme", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("theme", "dark"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := kv.Get("theme")
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if v != "dark" {
		t.Fatalf("expected overwritten value, got %q", v)
	}
}
