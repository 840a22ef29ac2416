package forecast

import (
	"sort"
	"time"
)

// Normalize reshapes the two raw provider payloads into the unified bundle.
// loc is the local timezone used for day-bucket boundaries and the noon
// representative-sample rule. Missing optional fields become nulls or empty
// lists; Normalize itself never fails.
func Normalize(current RawCurrent, fc RawForecast, loc *time.Location) Bundle {
	return Bundle{
		Current: normalizeCurrent(current),
		Hourly:  normalizeHourly(fc.List),
		Daily:   normalizeDaily(fc.List, loc),
		Source:  SourceTag,
	}
}

func normalizeCurrent(raw RawCurrent) CurrentConditions {
	return CurrentConditions{
		Dt:        raw.Dt,
		Temp:      raw.Main.Temp,
		FeelsLike: raw.Main.FeelsLike,
		Humidity:  raw.Main.Humidity,
		WindSpeed: raw.Wind.Speed,
		Weather:   conditions(raw.Weather),
	}
}

// normalizeHourly takes the first HourlyLimit list entries in original order.
// No aggregation, no filtering.
func normalizeHourly(list []RawSample) []HourlySample {
	n := len(list)
	if n > HourlyLimit {
		n = HourlyLimit
	}
	hourly := make([]HourlySample, 0, n)
	for _, item := range list[:n] {
		hourly = append(hourly, HourlySample{
			Dt:      item.Dt,
			Temp:    item.Main.Temp,
			Weather: conditions(item.Weather),
		})
	}
	return hourly
}

// normalizeDaily partitions the full list into local-calendar-day buckets,
// ascending by day, at most DailyLimit buckets. Min/max cover only samples
// with a numeric temperature; a bucket without any yields null/null. The
// representative condition comes from the local-noon sample when present,
// otherwise the bucket's first sample.
func normalizeDaily(list []RawSample, loc *time.Location) []DailyAggregate {
	byDay := make(map[int64][]RawSample)
	for _, item := range list {
		key := startOfDayUnix(item.Dt, loc)
		byDay[key] = append(byDay[key], item)
	}

	keys := make([]int64, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if len(keys) > DailyLimit {
		keys = keys[:DailyLimit]
	}

	daily := make([]DailyAggregate, 0, len(keys))
	for _, dayDt := range keys {
		items := byDay[dayDt]

		var min, max *float64
		for _, it := range items {
			t := it.Main.Temp
			if t == nil {
				continue
			}
			if min == nil || *t < *min {
				v := *t
				min = &v
			}
			if max == nil || *t > *max {
				v := *t
				max = &v
			}
		}

		rep := items[0]
		for _, it := range items {
			if time.Unix(it.Dt, 0).In(loc).Hour() == 12 {
				rep = it
				break
			}
		}

		daily = append(daily, DailyAggregate{
			Dt:      dayDt,
			Temp:    TempRange{Min: min, Max: max},
			Weather: conditions(rep.Weather),
		})
	}
	return daily
}

// startOfDayUnix returns the unix timestamp of local midnight for dt's day.
func startOfDayUnix(dt int64, loc *time.Location) int64 {
	t := time.Unix(dt, 0).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).Unix()
}

// conditions keeps the JSON shape stable: absent lists serialize as [].
func conditions(w []Condition) []Condition {
	if w == nil {
		return []Condition{}
	}
	return w
}
