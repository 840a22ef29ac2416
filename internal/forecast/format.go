package forecast

import (
	"fmt"
	"time"
)

// Display formatters for unix timestamps and units. Pure functions; the
// rendering surface decides where they end up.

// FormatTime renders a unix timestamp as a time of day, e.g. "14:00".
func FormatTime(dt int64, loc *time.Location) string {
	return time.Unix(dt, 0).In(loc).Format("15:04")
}

// FormatDay renders a unix timestamp as a weekday and date, e.g. "Mon, Jan 2".
func FormatDay(dt int64, loc *time.Location) string {
	return time.Unix(dt, 0).In(loc).Format("Mon, Jan 2")
}

// WindLabel renders a provider wind speed for the given unit system. The
// provider reports m/s under metric and mph under imperial.
func WindLabel(units Units, speed *float64) string {
	if speed == nil {
		return "—"
	}
	if units == UnitsMetric {
		return fmt.Sprintf("%.0f km/h", *speed*3.6)
	}
	return fmt.Sprintf("%.0f mph", *speed)
}

// IconSize selects the provider icon asset variant.
type IconSize string

const (
	IconSmall  IconSize = "sm"
	IconMedium IconSize = "md"
)

// IconURL builds the provider's icon asset URL for a condition icon code.
// Returns "" for an empty code.
func IconURL(code string, size IconSize) string {
	if code == "" {
		return ""
	}
	if size == IconMedium {
		return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", code)
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s.png", code)
}
