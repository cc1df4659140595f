package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"ghcnd-server/internal/ghcn"
)

type fakeFetcher struct {
	bodies  map[string][]byte
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.fetched = append(f.fetched, url)
	b, ok := f.bodies[url]
	if !ok {
		return nil, &ghcn.StatusError{URL: url, StatusCode: 404}
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

var testSources = Sources{
	StationsURL:  "http://upstream/ghcnd-stations.txt",
	InventoryURL: "http://upstream/ghcnd-inventory.txt",
	ByStationURL: "http://upstream/by_station",
}

func TestRepository_ScanStations(t *testing.T) {
	line := "GME00111445  52.4639   13.3017   51.0    BERLIN-DAHLEM                  GSN     10381"
	f := &fakeFetcher{bodies: map[string][]byte{testSources.StationsURL: []byte(line + "\nshort\n")}}
	repo := NewRepository(f, testSources)

	var got []ghcn.RegistryEntry
	if err := repo.ScanStations(context.Background(), func(e ghcn.RegistryEntry) { got = append(got, e) }); err != nil {
		t.Fatalf("ScanStations: %v", err)
	}
	if len(got) != 1 || got[0].ID != "GME00111445" || got[0].Name != "BERLIN-DAHLEM" {
		t.Errorf("entries = %+v; want BERLIN-DAHLEM only", got)
	}
}

func TestRepository_GetInventory(t *testing.T) {
	body := "GME00111445  52.4639   13.3017 TMAX 1876 2024\nGME00111445  52.4639   13.3017 TMIN 1876 2024\n"
	f := &fakeFetcher{bodies: map[string][]byte{testSources.InventoryURL: []byte(body)}}
	repo := NewRepository(f, testSources)

	inv, err := repo.GetInventory(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	window, ok := inv["GME00111445"].Window()
	if !ok || window.FirstYear != 1876 || window.LastYear != 2024 {
		t.Errorf("window = %+v, %v; want 1876-2024", window, ok)
	}
}

func TestRepository_ScanObservations(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte("GME00111445,20100101,TMAX,55,,,E,\n"))
	_ = zw.Close()

	url := testSources.ByStationURL + "/GME00111445.csv.gz"
	f := &fakeFetcher{bodies: map[string][]byte{url: buf.Bytes()}}
	repo := NewRepository(f, testSources)

	var got []ghcn.Observation
	err := repo.ScanObservations(context.Background(), "GME00111445", func(o ghcn.Observation) bool {
		got = append(got, o)
		return true
	})
	if err != nil {
		t.Fatalf("ScanObservations: %v", err)
	}
	if len(got) != 1 || got[0].Value != 5.5 {
		t.Errorf("observations = %+v; want one 5.5 reading", got)
	}
	if len(f.fetched) != 1 || f.fetched[0] != url {
		t.Errorf("fetched = %v; want [%s]", f.fetched, url)
	}
}

func TestRepository_upstreamError(t *testing.T) {
	repo := NewRepository(&fakeFetcher{}, testSources)

	err := repo.ScanObservations(context.Background(), "MISSING", func(ghcn.Observation) bool { return true })
	var statusErr *ghcn.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v; want *ghcn.StatusError", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q; want status code in message", err.Error())
	}
}
