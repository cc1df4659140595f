package weather

import (
	"net/http"

	"ghcnd-server/internal/config"
	"ghcnd-server/internal/ghcn"
	"ghcnd-server/internal/modules/weather/aggregator"
	"ghcnd-server/internal/modules/weather/controller"
	"ghcnd-server/internal/modules/weather/locator"
	"ghcnd-server/internal/modules/weather/repository"
)

// Services are the request-scoped engines shared by the HTTP handlers and
// the CLI commands.
type Services struct {
	Locator    *locator.Service
	Aggregator *aggregator.Service
}

func NewServices(cfg config.Config) Services {
	weatherRepository := repository.NewRepository(
		ghcn.NewHTTPFetcher(cfg.FetchTimeout),
		repository.Sources{
			StationsURL:  cfg.StationsURL,
			InventoryURL: cfg.InventoryURL,
			ByStationURL: cfg.ByStationURL,
		},
	)
	return Services{
		Locator:    locator.NewService(weatherRepository),
		Aggregator: aggregator.NewService(weatherRepository),
	}
}

// RegisterFeature mounts the weather routes. recorder and publisher may be nil.
func RegisterFeature(mux *http.ServeMux, cfg config.Config, services Services, recorder controller.QueryRecorder, publisher controller.ResultPublisher) {
	weatherController := controller.NewWeatherController(controller.Dependencies{
		Locator:         services.Locator,
		Aggregator:      services.Aggregator,
		Recorder:        recorder,
		Publisher:       publisher,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
	})
	weatherController.RegisterRoutes(mux)
}
