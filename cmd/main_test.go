package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghcnd-server/internal/modules/weather/aggregator"
	"ghcnd-server/internal/modules/weather/types"
)

func stationLine(id string, lat, lon float64, name string) string {
	return fmt.Sprintf("%-11s %8.4f %9.4f %6.1f %-2s %-30s %-3s %-3s %5s", id, lat, lon, 34.0, "", name, "", "", "")
}

func gzipString(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// withUpstream serves GHCN fixtures and points the environment at them.
func withUpstream(t *testing.T) {
	t.Helper()

	files := map[string][]byte{
		"/ghcnd-stations.txt": []byte(strings.Join([]string{
			stationLine("FAR00000002", 52.50, 13.405, "FAR"),
			stationLine("NEAR0000001", 52.53, 13.405, "NEAR"),
			stationLine("OUT00000003", 53.52, 13.405, "OUTSIDE"),
		}, "\n")),
		"/ghcnd-inventory.txt": []byte(strings.Join([]string{
			"NEAR0000001  52.5300   13.4050 TMAX 1990 2020",
			"NEAR0000001  52.5300   13.4050 TMIN 1990 2020",
			"FAR00000002  52.5000   13.4050 TMAX 2000 2015",
			"FAR00000002  52.5000   13.4050 TMIN 2005 2010",
		}, "\n")),
		"/by_station/NEAR0000001.csv.gz": gzipString(t, strings.Join([]string{
			"NEAR0000001,20100115,TMAX,55,,,E,",
			"NEAR0000001,20100115,TMIN,25,,,E,",
			"NEAR0000001,20100716,TMAX,255,,,E,",
			"NEAR0000001,20100716,TMIN,145,,,E,",
		}, "\n")),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, ok := files[r.URL.Path]
		if !ok {
			http.Error(w, "NoSuchKey", http.StatusNotFound)
			return
		}
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("GHCN_STATIONS_URL", srv.URL+"/ghcnd-stations.txt")
	t.Setenv("GHCN_INVENTORY_URL", srv.URL+"/ghcnd-inventory.txt")
	t.Setenv("GHCN_BY_STATION_URL", srv.URL+"/by_station")
	t.Setenv("QUERY_LOG_PATH", "")
	t.Setenv("MQTT_BROKER", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestStationsCommand(t *testing.T) {
	withUpstream(t)

	t.Run("prints stations nearest first", func(t *testing.T) {
		out, err := execute(t, "stations", "--lat", "52.52", "--lon", "13.405")
		require.NoError(t, err)

		var got []types.Station
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "NEAR0000001", got[0].ID)
		assert.Equal(t, 1.11, got[0].Distance)
		assert.Equal(t, "FAR00000002", got[1].ID)
		assert.Equal(t, 2.22, got[1].Distance)
	})

	t.Run("filters by coverage", func(t *testing.T) {
		out, err := execute(t, "stations", "--lat", "52.52", "--lon", "13.405", "--start-year", "1995", "--end-year", "2010")
		require.NoError(t, err)

		var got []types.Station
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "NEAR0000001", got[0].ID)
	})

	t.Run("honours count and radius", func(t *testing.T) {
		out, err := execute(t, "stations", "--lat", "52.52", "--lon", "13.405", "--radius", "200", "--count", "1")
		require.NoError(t, err)

		var got []types.Station
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "NEAR0000001", got[0].ID)
	})

	t.Run("requires coordinates", func(t *testing.T) {
		_, err := execute(t, "stations", "--lat", "52.52")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lon")
	})
}

func TestTemperaturesCommand(t *testing.T) {
	withUpstream(t)

	out, err := execute(t, "temperatures", "--station", "NEAR0000001", "--start-year", "2010", "--end-year", "2010")
	require.NoError(t, err)

	var got types.TemperatureSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Contains(t, got.Annual, 2010)
	require.NotNil(t, got.Annual[2010].TMAX.Avg)
	assert.Equal(t, 15.5, *got.Annual[2010].TMAX.Avg)
	require.NotNil(t, got.Seasonal[2010].Summer.TMIN)
	assert.Equal(t, 14.5, *got.Seasonal[2010].Summer.TMIN)
}

func TestTemperatureCommand(t *testing.T) {
	withUpstream(t)

	t.Run("averages one element", func(t *testing.T) {
		out, err := execute(t, "temperature", "--station", "NEAR0000001", "--year", "2010", "--type", "MIN")
		require.NoError(t, err)

		var got types.YearAverage
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "TMIN", string(got.Element))
		require.NotNil(t, got.Avg)
		assert.Equal(t, 8.5, *got.Avg)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := execute(t, "temperature", "--station", "NEAR0000001", "--year", "2010", "--type", "avg")
		assert.ErrorIs(t, err, aggregator.ErrInvalidTemperatureType)
	})

	t.Run("reports missing station data", func(t *testing.T) {
		_, err := execute(t, "temperature", "--station", "GONE0000000", "--year", "2010", "--type", "max")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GONE0000000")
	})
}

func TestMigrateCommand(t *testing.T) {
	withUpstream(t)

	t.Run("requires a query log path", func(t *testing.T) {
		_, err := execute(t, "migrate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "QUERY_LOG_PATH")
	})

	t.Run("creates the database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.db")
		t.Setenv("QUERY_LOG_PATH", path)

		out, err := execute(t, "migrate")
		require.NoError(t, err)
		assert.Contains(t, out, path)

		_, err = os.Stat(path)
		assert.NoError(t, err)

		// A second run finds nothing to apply.
		_, err = execute(t, "migrate")
		assert.NoError(t, err)
	})
}

func TestInvalidConfig(t *testing.T) {
	withUpstream(t)
	t.Setenv("APP_ENV", "staging")

	_, err := execute(t, "stations", "--lat", "1", "--lon", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")
}
