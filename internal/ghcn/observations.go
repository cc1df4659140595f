package ghcn

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// dateLayout is the YYYYMMDD form used in the by_station files.
const dateLayout = "20060102"

// Observation is one daily reading. Value is in degrees Celsius.
type Observation struct {
	StationID string
	Date      time.Time
	Element   Element
	Value     float64
}

// Column positions in a by_station row:
// ID, DATE, ELEMENT, VALUE, M-FLAG, Q-FLAG, S-FLAG, OBS-TIME.
const (
	colStationID = iota
	colDate
	colElement
	colValue
	minObservationColumns
)

// ScanObservations decompresses a by_station .csv.gz stream and calls fn for
// every row whose date and value parse. Values are converted from tenths of a
// degree. Malformed rows are skipped; a corrupt or truncated stream is an
// error. Returning false from fn stops the scan early.
func ScanObservations(r io.Reader, fn func(Observation) bool) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	cr := csv.NewReader(zr)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return fmt.Errorf("read observations: %w", err)
		}

		obs, ok := parseObservation(record)
		if !ok {
			continue
		}
		if !fn(obs) {
			return nil
		}
	}
}

func parseObservation(record []string) (Observation, bool) {
	if len(record) < minObservationColumns {
		return Observation{}, false
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(record[colDate]))
	if err != nil {
		return Observation{}, false
	}
	raw, ok := parseFinite(record[colValue])
	if !ok {
		return Observation{}, false
	}

	return Observation{
		StationID: strings.TrimSpace(record[colStationID]),
		Date:      date,
		Element:   Element(strings.TrimSpace(record[colElement])),
		Value:     raw / 10,
	}, true
}
