package types

import (
	"time"

	"ghcnd-server/internal/ghcn"
)

type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
}

// Average holds a mean temperature in °C; Avg is nil when no readings exist.
type Average struct {
	Avg *float64 `json:"avg"`
}

type AnnualStats struct {
	TMAX Average `json:"TMAX"`
	TMIN Average `json:"TMIN"`
}

type SeasonAverages struct {
	TMAX *float64 `json:"TMAX"`
	TMIN *float64 `json:"TMIN"`
}

type SeasonalStats struct {
	Spring SeasonAverages `json:"spring"`
	Summer SeasonAverages `json:"summer"`
	Autumn SeasonAverages `json:"autumn"`
	Winter SeasonAverages `json:"winter"`
}

type TemperatureSummary struct {
	Annual   map[int]AnnualStats   `json:"annual"`
	Seasonal map[int]SeasonalStats `json:"seasonal"`
}

type YearAverage struct {
	StationID string       `json:"station_id"`
	Year      int          `json:"year"`
	Element   ghcn.Element `json:"element"`
	Avg       *float64     `json:"avg"`
}

// AggregateEvent is published after a successful aggregation.
type AggregateEvent struct {
	StationID  string    `json:"station_id"`
	StartYear  int       `json:"start_year"`
	EndYear    int       `json:"end_year"`
	Years      int       `json:"years"`
	ComputedAt time.Time `json:"computed_at"`
}
