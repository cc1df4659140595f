// Package aggregator computes annual and seasonal temperature means from a
// station's daily GHCN-Daily records.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ghcnd-server/internal/ghcn"
	"ghcnd-server/internal/modules/weather/types"
)

const (
	minYear = 1
	maxYear = 9999
)

var (
	ErrMissingStationID       = errors.New("station_id is required")
	ErrInvalidTemperatureType = errors.New("type must be 'min' or 'max'")
)

// ObservationSource streams a station's daily records.
type ObservationSource interface {
	ScanObservations(ctx context.Context, stationID string, fn func(ghcn.Observation) bool) error
}

// Query selects a station and an inclusive year range. EndYear before
// StartYear is an empty range, not an error.
type Query struct {
	StationID string
	StartYear int
	EndYear   int
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.StationID) == "" {
		return ErrMissingStationID
	}
	if err := validateYear("start_year", q.StartYear); err != nil {
		return err
	}
	return validateYear("end_year", q.EndYear)
}

func validateYear(name string, y int) error {
	if y < minYear || y > maxYear {
		return fmt.Errorf("%s must be between %d and %d", name, minYear, maxYear)
	}
	return nil
}

// ParseTemperatureType maps "min" and "max" (any case) to TMIN and TMAX.
func ParseTemperatureType(s string) (ghcn.Element, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min":
		return ghcn.TMIN, nil
	case "max":
		return ghcn.TMAX, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidTemperatureType, s)
	}
}

type Service struct {
	source ObservationSource
}

func NewService(source ObservationSource) *Service {
	return &Service{source: source}
}

// Aggregate fetches the station file once and summarises it over the query
// range. The December before StartYear is read for the first winter.
func (s *Service) Aggregate(ctx context.Context, q Query) (types.TemperatureSummary, error) {
	if err := q.Validate(); err != nil {
		return types.TemperatureSummary{}, err
	}
	stationID := strings.TrimSpace(q.StationID)

	acc := newAccumulator(q.StartYear, q.EndYear)
	err := s.source.ScanObservations(ctx, stationID, func(o ghcn.Observation) bool {
		acc.add(o)
		return true
	})
	if err != nil {
		return types.TemperatureSummary{}, fmt.Errorf("station %s: %w", stationID, err)
	}

	return acc.summary(), nil
}

// YearAverage returns the mean of one element over a single calendar year.
func (s *Service) YearAverage(ctx context.Context, stationID string, year int, element ghcn.Element) (types.YearAverage, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return types.YearAverage{}, ErrMissingStationID
	}
	if err := validateYear("year", year); err != nil {
		return types.YearAverage{}, err
	}
	if !element.IsTemperature() {
		return types.YearAverage{}, ErrInvalidTemperatureType
	}

	var m mean
	err := s.source.ScanObservations(ctx, stationID, func(o ghcn.Observation) bool {
		if o.Element == element && o.Date.Year() == year {
			m.add(o.Value)
		}
		return true
	})
	if err != nil {
		return types.YearAverage{}, fmt.Errorf("station %s: %w", stationID, err)
	}

	return types.YearAverage{
		StationID: stationID,
		Year:      year,
		Element:   element,
		Avg:       m.value(),
	}, nil
}

// Summarize aggregates an in-memory set of observations over [start, end].
func Summarize(start, end int, observations []ghcn.Observation) types.TemperatureSummary {
	acc := newAccumulator(start, end)
	for _, o := range observations {
		acc.add(o)
	}
	return acc.summary()
}

type season int

const (
	spring season = iota
	summer
	autumn
	winter
	numSeasons
)

// seasonOf maps a month to its meteorological season and the year the
// season is attributed to. December counts towards the next year's winter.
func seasonOf(date time.Time) (season, int) {
	year := date.Year()
	switch date.Month() {
	case time.March, time.April, time.May:
		return spring, year
	case time.June, time.July, time.August:
		return summer, year
	case time.September, time.October, time.November:
		return autumn, year
	case time.December:
		return winter, year + 1
	default:
		return winter, year
	}
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m mean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	v := math.Round(m.sum/float64(m.count)*100) / 100
	return &v
}

// elementMeans holds one accumulator per temperature element.
type elementMeans struct {
	tmax mean
	tmin mean
}

func (e *elementMeans) add(o ghcn.Observation) {
	switch o.Element {
	case ghcn.TMAX:
		e.tmax.add(o.Value)
	case ghcn.TMIN:
		e.tmin.add(o.Value)
	}
}

type yearBucket struct {
	annual  elementMeans
	seasons [numSeasons]elementMeans
}

type accumulator struct {
	start, end int
	years      map[int]*yearBucket
}

func newAccumulator(start, end int) *accumulator {
	return &accumulator{start: start, end: end, years: make(map[int]*yearBucket)}
}

func (a *accumulator) bucket(year int) *yearBucket {
	b, ok := a.years[year]
	if !ok {
		b = &yearBucket{}
		a.years[year] = b
	}
	return b
}

func (a *accumulator) inRange(year int) bool {
	return year >= a.start && year <= a.end
}

func (a *accumulator) add(o ghcn.Observation) {
	if !o.Element.IsTemperature() {
		return
	}
	year := o.Date.Year()
	if year < a.start-1 || year > a.end {
		return
	}

	if a.inRange(year) {
		a.bucket(year).annual.add(o)
	}
	s, seasonYear := seasonOf(o.Date)
	if a.inRange(seasonYear) {
		a.bucket(seasonYear).seasons[s].add(o)
	}
}

func (a *accumulator) summary() types.TemperatureSummary {
	out := types.TemperatureSummary{
		Annual:   make(map[int]types.AnnualStats),
		Seasonal: make(map[int]types.SeasonalStats),
	}
	for year := a.start; year <= a.end; year++ {
		b, ok := a.years[year]
		if !ok {
			b = &yearBucket{}
		}
		out.Annual[year] = types.AnnualStats{
			TMAX: types.Average{Avg: b.annual.tmax.value()},
			TMIN: types.Average{Avg: b.annual.tmin.value()},
		}
		out.Seasonal[year] = types.SeasonalStats{
			Spring: b.seasons[spring].averages(),
			Summer: b.seasons[summer].averages(),
			Autumn: b.seasons[autumn].averages(),
			Winter: b.seasons[winter].averages(),
		}
	}
	return out
}

func (e elementMeans) averages() types.SeasonAverages {
	return types.SeasonAverages{TMAX: e.tmax.value(), TMIN: e.tmin.value()}
}
