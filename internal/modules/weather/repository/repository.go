package repository

import (
	"context"
	"io"
	"log/slog"

	"ghcnd-server/internal/ghcn"
)

// Sources holds the upstream locations of the GHCN-Daily resources.
type Sources struct {
	StationsURL  string
	InventoryURL string
	ByStationURL string
}

// WeatherRepository streams GHCN-Daily data from upstream. Nothing is cached;
// every call performs a fresh fetch.
type WeatherRepository interface {
	ScanStations(ctx context.Context, fn func(ghcn.RegistryEntry)) error
	GetInventory(ctx context.Context, keep func(stationID string) bool) (ghcn.Inventory, error)
	ScanObservations(ctx context.Context, stationID string, fn func(ghcn.Observation) bool) error
}

type repositoryImpl struct {
	fetcher ghcn.Fetcher
	sources Sources
}

func NewRepository(fetcher ghcn.Fetcher, sources Sources) WeatherRepository {
	return &repositoryImpl{fetcher: fetcher, sources: sources}
}

func (r *repositoryImpl) ScanStations(ctx context.Context, fn func(ghcn.RegistryEntry)) error {
	body, err := r.fetcher.Fetch(ctx, r.sources.StationsURL)
	if err != nil {
		return err
	}
	defer closeBody(body, r.sources.StationsURL)

	return ghcn.ScanRegistry(body, fn)
}

func (r *repositoryImpl) GetInventory(ctx context.Context, keep func(stationID string) bool) (ghcn.Inventory, error) {
	body, err := r.fetcher.Fetch(ctx, r.sources.InventoryURL)
	if err != nil {
		return nil, err
	}
	defer closeBody(body, r.sources.InventoryURL)

	return ghcn.ParseInventory(body, keep)
}

func (r *repositoryImpl) ScanObservations(ctx context.Context, stationID string, fn func(ghcn.Observation) bool) error {
	url := ghcn.StationDataURL(r.sources.ByStationURL, stationID)
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	defer closeBody(body, url)

	return ghcn.ScanObservations(body, fn)
}

func closeBody(body io.Closer, url string) {
	if err := body.Close(); err != nil {
		slog.Error("close upstream body", "url", url, "error", err)
	}
}
