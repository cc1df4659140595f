package ghcn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Element is a GHCN-Daily observation code.
type Element string

const (
	TMAX Element = "TMAX"
	TMIN Element = "TMIN"
)

// IsTemperature reports whether e is one of the daily temperature extremes.
func (e Element) IsTemperature() bool {
	return e == TMAX || e == TMIN
}

// Coverage is the span of years during which a station reported an element.
type Coverage struct {
	FirstYear int
	LastYear  int
}

// merge widens c so that it also spans other.
func (c Coverage) merge(other Coverage) Coverage {
	return Coverage{
		FirstYear: min(c.FirstYear, other.FirstYear),
		LastYear:  max(c.LastYear, other.LastYear),
	}
}

// StationCoverage holds the merged TMAX and TMIN coverage of one station.
type StationCoverage struct {
	TMAX *Coverage
	TMIN *Coverage
}

// Window returns the span in which both TMAX and TMIN were reported. ok is
// false when the station lacks either element.
func (s StationCoverage) Window() (window Coverage, ok bool) {
	if s.TMAX == nil || s.TMIN == nil {
		return Coverage{}, false
	}
	return Coverage{
		FirstYear: max(s.TMAX.FirstYear, s.TMIN.FirstYear),
		LastYear:  min(s.TMAX.LastYear, s.TMIN.LastYear),
	}, true
}

// Inventory maps station ids to their merged temperature coverage.
type Inventory map[string]*StationCoverage

func (inv Inventory) add(stationID string, element Element, c Coverage) {
	sc, ok := inv[stationID]
	if !ok {
		sc = &StationCoverage{}
		inv[stationID] = sc
	}

	slot := &sc.TMAX
	if element == TMIN {
		slot = &sc.TMIN
	}
	if *slot == nil {
		*slot = &c
		return
	}
	merged := (*slot).merge(c)
	*slot = &merged
}

// inventoryFields is the minimum token count of an inventory line:
// id, latitude, longitude, element, first year, last year.
const inventoryFields = 6

// ParseInventory reads the whitespace separated inventory listing. Only TMAX
// and TMIN lines are kept; repeated entries for the same station and element
// are merged. When keep is non-nil, stations it rejects are ignored.
func ParseInventory(r io.Reader, keep func(stationID string) bool) (Inventory, error) {
	inv := make(Inventory)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < inventoryFields {
			continue
		}

		stationID, element := parts[0], Element(parts[3])
		if !element.IsTemperature() {
			continue
		}
		if keep != nil && !keep(stationID) {
			continue
		}

		first, err := strconv.Atoi(parts[4])
		if err != nil {
			continue
		}
		last, err := strconv.Atoi(parts[5])
		if err != nil {
			continue
		}

		inv.add(stationID, element, Coverage{FirstYear: first, LastYear: last})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	return inv, nil
}
