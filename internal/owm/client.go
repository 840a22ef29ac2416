// Package owm is the OpenWeatherMap client backing geocoding and the two
// free-tier weather endpoints (current conditions + 5-day/3-hour forecast).
package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/skycast-app/skycast/internal/forecast"
	"github.com/skycast-app/skycast/internal/geo"
)

const (
	defaultGeoBaseURL     = "http://api.openweathermap.org/geo/1.0"
	defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
)

var errCircuitOpen = errors.New("circuit breaker open")

// Client calls the OpenWeatherMap API. Calls go through a circuit breaker so
// a dead upstream fails fast; there is no retrying, a failed call surfaces
// immediately.
type Client struct {
	apiKey         string
	httpClient     *http.Client
	geoBaseURL     string
	weatherBaseURL string
	circuit        *gobreaker.CircuitBreaker
}

func New(apiKey string, httpClient *http.Client) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		apiKey:         apiKey,
		httpClient:     httpClient,
		geoBaseURL:     defaultGeoBaseURL,
		weatherBaseURL: defaultWeatherBaseURL,
		circuit:        cb,
	}
}

// Geocode resolves a free-text query into provider-ranked place candidates.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]geo.PlaceCandidate, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", fmt.Sprintf("%d", limit))
	values.Set("appid", c.apiKey)

	var candidates []geo.PlaceCandidate
	if err := c.getJSON(ctx, c.geoBaseURL+"/direct?"+values.Encode(), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// ReverseGeocode resolves a coordinate into at most one place candidate.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) ([]geo.PlaceCandidate, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("limit", "1")
	values.Set("appid", c.apiKey)

	var candidates []geo.PlaceCandidate
	if err := c.getJSON(ctx, c.geoBaseURL+"/reverse?"+values.Encode(), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// CurrentConditions fetches the current-weather snapshot.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64, units forecast.Units) (forecast.RawCurrent, error) {
	var payload forecast.RawCurrent
	if c.apiKey == "" {
		return payload, ErrMissingAPIKey
	}
	err := c.getJSON(ctx, c.weatherBaseURL+"/weather?"+c.coordQuery(lat, lon, units), &payload)
	return payload, err
}

// Forecast5 fetches the 5-day/3-hour forecast list.
func (c *Client) Forecast5(ctx context.Context, lat, lon float64, units forecast.Units) (forecast.RawForecast, error) {
	var payload forecast.RawForecast
	if c.apiKey == "" {
		return payload, ErrMissingAPIKey
	}
	err := c.getJSON(ctx, c.weatherBaseURL+"/forecast?"+c.coordQuery(lat, lon, units), &payload)
	return payload, err
}

func (c *Client) coordQuery(lat, lon float64, units forecast.Units) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("units", string(units))
	values.Set("appid", c.apiKey)
	return values.Encode()
}

// getJSON performs a single GET through the circuit breaker and decodes the
// response. Non-2xx outcomes become *UpstreamError with the raw body attached.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return err
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	return json.Unmarshal(body, out)
}
