package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ghcnd-server/internal/ghcn"
	"ghcnd-server/internal/modules/weather/aggregator"
	"ghcnd-server/internal/modules/weather/locator"
)

func parseSearchQuery(r *http.Request, defaultRadiusKm float64) (locator.Query, error) {
	q := r.URL.Query()

	lat, err := requiredFloat(q, "latitude")
	if err != nil {
		return locator.Query{}, err
	}
	lon, err := requiredFloat(q, "longitude")
	if err != nil {
		return locator.Query{}, err
	}

	radius := defaultRadiusKm
	if s := strings.TrimSpace(q.Get("radius")); s != "" {
		radius, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return locator.Query{}, errors.New("invalid 'radius' (expected number)")
		}
	}

	count, err := optionalInt(q, "station_count")
	if err != nil {
		return locator.Query{}, err
	}
	startYear, err := optionalInt(q, "start_year")
	if err != nil {
		return locator.Query{}, err
	}
	endYear, err := optionalInt(q, "end_year")
	if err != nil {
		return locator.Query{}, err
	}

	return locator.Query{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
		Count:     count,
		StartYear: startYear,
		EndYear:   endYear,
	}, nil
}

func parseStationDataQuery(r *http.Request) (aggregator.Query, error) {
	q := r.URL.Query()

	startYear, err := requiredInt(q, "start_year")
	if err != nil {
		return aggregator.Query{}, err
	}
	endYear, err := requiredInt(q, "end_year")
	if err != nil {
		return aggregator.Query{}, err
	}

	stationID := strings.TrimSpace(q.Get("station_id"))
	if stationID == "" {
		return aggregator.Query{}, aggregator.ErrMissingStationID
	}

	return aggregator.Query{StationID: stationID, StartYear: startYear, EndYear: endYear}, nil
}

func parseYearQuery(r *http.Request) (int, ghcn.Element, error) {
	q := r.URL.Query()

	year, err := requiredInt(q, "year")
	if err != nil {
		return 0, "", err
	}
	element, err := aggregator.ParseTemperatureType(q.Get("type"))
	if err != nil {
		return 0, "", err
	}
	return year, element, nil
}

func requiredFloat(q url.Values, name string) (float64, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return 0, fmt.Errorf("missing '%s'", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' (expected number)", name)
	}
	return v, nil
}

func requiredInt(q url.Values, name string) (int, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return 0, fmt.Errorf("missing '%s'", name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' (expected integer)", name)
	}
	return v, nil
}

func optionalInt(q url.Values, name string) (*int, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid '%s' (expected integer)", name)
	}
	return &v, nil
}
