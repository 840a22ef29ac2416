package forecast

// Units selects the measurement system the provider converts values into.
// Unit conversion is provider-side; changing units always means a refetch.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits normalizes a raw units parameter, defaulting to metric.
func ParseUnits(s string) Units {
	if Units(s) == UnitsImperial {
		return UnitsImperial
	}
	return UnitsMetric
}

// Condition is one entry of the provider's weather-condition list.
type Condition struct {
	ID          int    `json:"id,omitempty"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// RawCurrent is the provider's current-conditions payload, as decoded.
// Pointer fields distinguish absent values from zero values.
type RawCurrent struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []Condition `json:"weather"`
}

// RawSample is one 3-hour-step record of the provider's 5-day forecast list.
type RawSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
}

// RawForecast is the provider's 5-day/3-hour forecast payload, list ordered
// ascending by Dt.
type RawForecast struct {
	List []RawSample `json:"list"`
}

// CurrentConditions is the normalized current-weather view. Fields the
// provider omitted stay null rather than zero.
type CurrentConditions struct {
	Dt        int64       `json:"dt"`
	Temp      *float64    `json:"temp"`
	FeelsLike *float64    `json:"feels_like"`
	Humidity  *float64    `json:"humidity"`
	WindSpeed *float64    `json:"wind_speed"`
	Weather   []Condition `json:"weather"`
}

// HourlySample is one forecast list entry projected verbatim.
type HourlySample struct {
	Dt      int64       `json:"dt"`
	Temp    *float64    `json:"temp"`
	Weather []Condition `json:"weather"`
}

// TempRange holds a daily bucket's temperature extremes. Both are null when no
// sample in the bucket carried a numeric temperature.
type TempRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// DailyAggregate is one local-calendar-day bucket of forecast samples.
// Dt is the bucket's local midnight in unix seconds.
type DailyAggregate struct {
	Dt      int64       `json:"dt"`
	Temp    TempRange   `json:"temp"`
	Weather []Condition `json:"weather"`
}

// Bundle is the unified current/hourly/daily forecast shape. It is transient:
// rebuilt on every search, selection, or unit change, never persisted.
type Bundle struct {
	Current CurrentConditions `json:"current"`
	Hourly  []HourlySample    `json:"hourly"`
	Daily   []DailyAggregate  `json:"daily"`
	Source  string            `json:"source"`
}

const (
	// SourceTag identifies the data provenance of every successful bundle.
	SourceTag = "free_current+5day_forecast"

	// HourlyLimit caps the hourly view. The provider list is in 3-hour steps,
	// so 12 entries span roughly 36 hours; the original UI labels this
	// "next 12 hours" and we keep the literal first-12 behavior.
	HourlyLimit = 12

	// DailyLimit caps emitted day buckets. Free-tier data typically yields 5.
	DailyLimit = 7
)
