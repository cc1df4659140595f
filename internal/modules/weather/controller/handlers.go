package controller

import (
	"log/slog"
	"net/http"
	"time"

	qltypes "ghcnd-server/internal/modules/querylog/types"
	"ghcnd-server/internal/modules/weather/types"
	"ghcnd-server/internal/utils"
)

type stationsResponse struct {
	Stations []types.Station `json:"stations"`
}

func (c *weatherControllerImpl) handleSearchStations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q, err := parseSearchQuery(r, c.defaultRadiusKm)
	if err != nil {
		c.fail(w, r, qltypes.KindSearchStations, start, err)
		return
	}

	stations, err := c.locator.Locate(r.Context(), q)
	if err != nil {
		slog.Warn("search stations failed", "error", err)
		c.fail(w, r, qltypes.KindSearchStations, start, err)
		return
	}

	c.record(r, qltypes.KindSearchStations, http.StatusOK, len(stations), start)
	utils.WriteJSON(w, http.StatusOK, stationsResponse{Stations: stations})
}

func (c *weatherControllerImpl) handleStationData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q, err := parseStationDataQuery(r)
	if err != nil {
		c.fail(w, r, qltypes.KindStationData, start, err)
		return
	}

	summary, err := c.aggregator.Aggregate(r.Context(), q)
	if err != nil {
		slog.Warn("station data failed", "station_id", q.StationID, "error", err)
		c.fail(w, r, qltypes.KindStationData, start, err)
		return
	}

	c.record(r, qltypes.KindStationData, http.StatusOK, len(summary.Annual), start)
	if c.publisher != nil {
		// The broker ack can take seconds; the response does not wait for it.
		go c.publish(types.AggregateEvent{
			StationID:  q.StationID,
			StartYear:  q.StartYear,
			EndYear:    q.EndYear,
			Years:      len(summary.Annual),
			ComputedAt: time.Now().UTC(),
		})
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (c *weatherControllerImpl) publish(event types.AggregateEvent) {
	if err := c.publisher.PublishAggregate(event); err != nil {
		slog.Warn("publish aggregate event failed", "station_id", event.StationID, "error", err)
	}
}

func (c *weatherControllerImpl) handleYearTemperature(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing station id")
		return
	}

	year, element, err := parseYearQuery(r)
	if err != nil {
		c.fail(w, r, qltypes.KindYearTemperature, start, err)
		return
	}

	result, err := c.aggregator.YearAverage(r.Context(), id, year, element)
	if err != nil {
		slog.Warn("year temperature failed", "station_id", id, "error", err)
		c.fail(w, r, qltypes.KindYearTemperature, start, err)
		return
	}

	count := 0
	if result.Avg != nil {
		count = 1
	}
	c.record(r, qltypes.KindYearTemperature, http.StatusOK, count, start)
	utils.WriteJSON(w, http.StatusOK, result)
}

// fail answers 400 with the error text. Validation, upstream and stream
// errors all surface to the caller the same way.
func (c *weatherControllerImpl) fail(w http.ResponseWriter, r *http.Request, kind string, start time.Time, err error) {
	c.record(r, kind, http.StatusBadRequest, 0, start)
	utils.WriteError(w, http.StatusBadRequest, err.Error())
}

func (c *weatherControllerImpl) record(r *http.Request, kind string, status, count int, start time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.Record(r.Context(), qltypes.Entry{
		Kind:        kind,
		Params:      r.URL.RawQuery,
		Status:      status,
		ResultCount: count,
		DurationMs:  time.Since(start).Milliseconds(),
		CreatedAt:   start.UTC(),
	})
}
