package types

import "time"

const (
	KindSearchStations  = "search_stations"
	KindStationData     = "station_data"
	KindYearTemperature = "year_temperature"
)

// Entry records one served query. Params is the raw query string; fetched
// data is never stored.
type Entry struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Params      string    `json:"params"`
	Status      int       `json:"status"`
	ResultCount int       `json:"result_count"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
