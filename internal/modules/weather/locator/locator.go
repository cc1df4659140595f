// Package locator finds GHCN-Daily stations around a point.
package locator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"ghcnd-server/internal/ghcn"
	"ghcnd-server/internal/modules/weather/types"
)

const (
	DefaultRadiusKm = 10.0

	minYear = 1
	maxYear = 9999
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrInvalidRadius    = errors.New("radius must be a non-negative number")
	ErrInvalidCount     = errors.New("station_count must be >= 0")
)

// StationSource is the upstream data the locator needs.
type StationSource interface {
	ScanStations(ctx context.Context, fn func(ghcn.RegistryEntry)) error
	GetInventory(ctx context.Context, keep func(stationID string) bool) (ghcn.Inventory, error)
}

// Query describes a station search. A nil Count yields an empty result
// without touching upstream. Availability filtering applies when StartYear or
// EndYear is set; a missing bound is unconstrained.
type Query struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Count     *int
	StartYear *int
	EndYear   *int
}

func (q Query) filtersAvailability() bool {
	return q.StartYear != nil || q.EndYear != nil
}

// Validate checks that every field is within range.
func (q Query) Validate() error {
	if math.IsNaN(q.Latitude) || q.Latitude < -90 || q.Latitude > 90 {
		return ErrInvalidLatitude
	}
	if math.IsNaN(q.Longitude) || q.Longitude < -180 || q.Longitude > 180 {
		return ErrInvalidLongitude
	}
	if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) || q.RadiusKm < 0 {
		return ErrInvalidRadius
	}
	if q.Count != nil && *q.Count < 0 {
		return ErrInvalidCount
	}
	if err := validateYear("start_year", q.StartYear); err != nil {
		return err
	}
	return validateYear("end_year", q.EndYear)
}

func validateYear(name string, y *int) error {
	if y != nil && (*y < minYear || *y > maxYear) {
		return fmt.Errorf("%s must be between %d and %d", name, minYear, maxYear)
	}
	return nil
}

type Service struct {
	source StationSource
}

func NewService(source StationSource) *Service {
	return &Service{source: source}
}

// Locate returns the stations within the query radius, nearest first,
// truncated to the requested count.
func (s *Service) Locate(ctx context.Context, q Query) ([]types.Station, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Count == nil || *q.Count == 0 {
		return []types.Station{}, nil
	}

	candidates, err := s.withinRadius(ctx, q)
	if err != nil {
		return nil, err
	}

	if q.filtersAvailability() && len(candidates) > 0 {
		candidates, err = s.withCoverage(ctx, q, candidates)
		if err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(candidates, func(a, b types.Station) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	if len(candidates) > *q.Count {
		candidates = candidates[:*q.Count]
	}
	return candidates, nil
}

func (s *Service) withinRadius(ctx context.Context, q Query) ([]types.Station, error) {
	out := []types.Station{}
	err := s.source.ScanStations(ctx, func(e ghcn.RegistryEntry) {
		d := Haversine(q.Latitude, q.Longitude, e.Latitude, e.Longitude)
		// NaN compares false both ways; only a real distance within range counts.
		if !(d <= q.RadiusKm) {
			return
		}
		out = append(out, types.Station{
			ID:        e.ID,
			Name:      e.Name,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			Distance:  round2(d),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("fetch station registry: %w", err)
	}
	return out, nil
}

func (s *Service) withCoverage(ctx context.Context, q Query, candidates []types.Station) ([]types.Station, error) {
	ids := make(map[string]struct{}, len(candidates))
	for _, st := range candidates {
		ids[st.ID] = struct{}{}
	}

	inv, err := s.source.GetInventory(ctx, func(id string) bool {
		_, ok := ids[id]
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}

	kept := candidates[:0]
	for _, st := range candidates {
		if covers(inv[st.ID], q.StartYear, q.EndYear) {
			kept = append(kept, st)
		}
	}
	slog.Debug("availability filter applied", "candidates", len(candidates), "kept", len(kept))
	return kept, nil
}

// covers reports whether the station reported both TMAX and TMIN over the
// whole requested span.
func covers(sc *ghcn.StationCoverage, start, end *int) bool {
	if sc == nil {
		return false
	}
	window, ok := sc.Window()
	if !ok {
		return false
	}
	if start != nil && window.FirstYear > *start {
		return false
	}
	if end != nil && window.LastYear < *end {
		return false
	}
	return true
}
