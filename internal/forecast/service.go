package forecast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	// ErrCurrentFetch marks a failed current-conditions upstream call.
	ErrCurrentFetch = errors.New("current weather fetch failed")
	// ErrForecastFetch marks a failed 5-day-forecast upstream call.
	ErrForecastFetch = errors.New("forecast fetch failed")
)

// Client abstracts the raw provider calls the service depends on.
type Client interface {
	CurrentConditions(ctx context.Context, lat, lon float64, units Units) (RawCurrent, error)
	Forecast5(ctx context.Context, lat, lon float64, units Units) (RawForecast, error)
}

// Service fetches the two upstream payloads and normalizes them into a Bundle.
type Service struct {
	client Client
	loc    *time.Location
}

func NewService(client Client) *Service {
	return &Service{client: client, loc: time.Local}
}

// Bundle issues the current-conditions and forecast calls concurrently, waits
// for both, and normalizes. Either failure short-circuits the combined result;
// no partial data is returned. The current-conditions failure is reported
// first when both fail.
func (s *Service) Bundle(ctx context.Context, lat, lon float64, units Units) (Bundle, error) {
	var (
		wg      sync.WaitGroup
		current RawCurrent
		curErr  error
		fc      RawForecast
		fcErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, curErr = s.client.CurrentConditions(ctx, lat, lon, units)
	}()
	go func() {
		defer wg.Done()
		fc, fcErr = s.client.Forecast5(ctx, lat, lon, units)
	}()
	wg.Wait()

	if curErr != nil {
		log.Printf("current conditions fetch failed for %.4f,%.4f: %v", lat, lon, curErr)
		return Bundle{}, fmt.Errorf("%w: %w", ErrCurrentFetch, curErr)
	}
	if fcErr != nil {
		log.Printf("forecast fetch failed for %.4f,%.4f: %v", lat, lon, fcErr)
		return Bundle{}, fmt.Errorf("%w: %w", ErrForecastFetch, fcErr)
	}

	return Normalize(current, fc, s.loc), nil
}
