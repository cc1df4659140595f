package controller

import (
	"context"
	"net/http"

	"ghcnd-server/internal/ghcn"
	qltypes "ghcnd-server/internal/modules/querylog/types"
	"ghcnd-server/internal/modules/weather/aggregator"
	"ghcnd-server/internal/modules/weather/locator"
	"ghcnd-server/internal/modules/weather/types"
)

type StationLocator interface {
	Locate(ctx context.Context, q locator.Query) ([]types.Station, error)
}

type TemperatureAggregator interface {
	Aggregate(ctx context.Context, q aggregator.Query) (types.TemperatureSummary, error)
	YearAverage(ctx context.Context, stationID string, year int, element ghcn.Element) (types.YearAverage, error)
}

type QueryRecorder interface {
	Record(ctx context.Context, e qltypes.Entry)
}

type ResultPublisher interface {
	PublishAggregate(event types.AggregateEvent) error
}

// Dependencies wires the controller. Recorder and Publisher are optional.
type Dependencies struct {
	Locator         StationLocator
	Aggregator      TemperatureAggregator
	Recorder        QueryRecorder
	Publisher       ResultPublisher
	DefaultRadiusKm float64
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	locator         StationLocator
	aggregator      TemperatureAggregator
	recorder        QueryRecorder
	publisher       ResultPublisher
	defaultRadiusKm float64
}

func NewWeatherController(deps Dependencies) WeatherController {
	radius := deps.DefaultRadiusKm
	if radius <= 0 {
		radius = locator.DefaultRadiusKm
	}
	return &weatherControllerImpl{
		locator:         deps.Locator,
		aggregator:      deps.Aggregator,
		recorder:        deps.Recorder,
		publisher:       deps.Publisher,
		defaultRadiusKm: radius,
	}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search_stations/{$}", c.handleSearchStations)
	mux.HandleFunc("GET /api/get_station_data/{$}", c.handleStationData)
	mux.HandleFunc("GET /api/v1/stations/{id}/temperature", c.handleYearTemperature)
}
