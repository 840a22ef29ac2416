package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skycast-app/skycast/internal/app"
	"github.com/skycast-app/skycast/internal/forecast"
	"github.com/skycast-app/skycast/internal/geo"
	"github.com/skycast-app/skycast/internal/owm"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(fapp *fiber.App, places app.PlaceResolver, forecasts app.ForecastFetcher, ctrl *app.Controller) {
	v1 := fapp.Group("/api/v1")

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing city query"})
		}

		candidates, err := places.Search(c.Context(), q)
		if err != nil {
			return upstreamError(c, err, "OpenWeather geocode failed")
		}
		if candidates == nil {
			candidates = []geo.PlaceCandidate{}
		}
		return c.JSON(candidates)
	})

	v1.Get("/reverse", func(c *fiber.Ctx) error {
		coords, err := parseCoordQuery(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing lat/lon"})
		}

		candidate, err := places.Locate(c.Context(), coords.lat, coords.lon)
		if err != nil {
			return upstreamError(c, err, "OpenWeather reverse geocode failed")
		}
		return c.JSON([]geo.PlaceCandidate{candidate})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		coords, err := parseCoordQuery(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing lat/lon"})
		}
		units := forecast.ParseUnits(c.Query("units"))

		bundle, err := forecasts.Bundle(c.Context(), coords.lat, coords.lon, units)
		if err != nil {
			msg := "Forecast fetch failed"
			if errors.Is(err, forecast.ErrCurrentFetch) {
				msg = "Current weather fetch failed"
			}
			return upstreamError(c, err, msg)
		}
		return c.JSON(bundle)
	})

	v1.Get("/places", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.SavedPlaces())
	})

	v1.Post("/places", func(c *fiber.Ctx) error {
		var body placeBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctrl.SavePlace(body.toCandidate())
		return c.Status(fiber.StatusCreated).JSON(ctrl.SavedPlaces())
	})

	v1.Delete("/places", func(c *fiber.Ctx) error {
		coords, err := parseCoordQuery(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing lat/lon"})
		}
		ctrl.RemoveSaved(geo.PlaceCandidate{Lat: coords.lat, Lon: coords.lon})
		return c.JSON(ctrl.SavedPlaces())
	})

	v1.Get("/prefs/theme", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"theme": ctrl.Theme()})
	})

	v1.Put("/prefs/theme", func(c *fiber.Ctx) error {
		var body themeBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctrl.SetTheme(app.Theme(body.Theme))
		return c.JSON(fiber.Map{"theme": ctrl.Theme()})
	})
}

// upstreamError maps provider-facing failures to HTTP responses: a missing
// credential is a 500 configuration error with no upstream details; a
// non-success upstream outcome passes its own status and body through.
func upstreamError(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, owm.ErrMissingAPIKey) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Missing API key"})
	}
	var ue *owm.UpstreamError
	if errors.As(err, &ue) {
		// Upstream bodies are usually JSON but not guaranteed to be.
		var details any = ue.Body
		if !json.Valid(ue.Body) {
			details = string(ue.Body)
		}
		return c.Status(ue.Status).JSON(fiber.Map{"error": msg, "details": details})
	}
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

type coordQuery struct {
	LatRaw string `validate:"required"`
	LonRaw string `validate:"required"`

	lat float64
	lon float64
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	q := coordQuery{
		LatRaw: c.Query("lat"),
		LonRaw: c.Query("lon"),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}

	var err error
	if q.lat, err = strconv.ParseFloat(q.LatRaw, 64); err != nil {
		return q, err
	}
	if q.lon, err = strconv.ParseFloat(q.LonRaw, 64); err != nil {
		return q, err
	}
	return q, nil
}

// placeBody is the save-place request. Coordinates are pointers so a present
// zero coordinate is distinguishable from an absent field.
type placeBody struct {
	Name    string   `json:"name" validate:"required"`
	Lat     *float64 `json:"lat" validate:"required"`
	Lon     *float64 `json:"lon" validate:"required"`
	Country string   `json:"country"`
	State   string   `json:"state"`
}

func (b placeBody) toCandidate() geo.PlaceCandidate {
	return geo.PlaceCandidate{
		Name:    b.Name,
		Lat:     *b.Lat,
		Lon:     *b.Lon,
		Country: b.Country,
		State:   b.State,
	}
}

type themeBody struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}
