package ghcn

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Byte offsets of the ghcnd-stations.txt columns used here.
const (
	registryIDEnd     = 11
	registryLatStart  = 12
	registryLatEnd    = 20
	registryLonStart  = 21
	registryLonEnd    = 30
	registryNameStart = 41
	registryNameEnd   = 71
)

// RegistryEntry is one parsed line of the station registry.
type RegistryEntry struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// ParseRegistryLine extracts a registry entry from a fixed-width line. It
// reports false for lines that are too short or carry non-numeric coordinates.
func ParseRegistryLine(line string) (RegistryEntry, bool) {
	if len(line) < registryNameEnd {
		return RegistryEntry{}, false
	}

	lat, ok := parseFinite(line[registryLatStart:registryLatEnd])
	if !ok {
		return RegistryEntry{}, false
	}
	lon, ok := parseFinite(line[registryLonStart:registryLonEnd])
	if !ok {
		return RegistryEntry{}, false
	}

	return RegistryEntry{
		ID:        strings.TrimSpace(line[:registryIDEnd]),
		Name:      strings.TrimSpace(line[registryNameStart:registryNameEnd]),
		Latitude:  lat,
		Longitude: lon,
	}, true
}

// parseFinite parses a decimal field. ParseFloat also accepts "NaN" and
// "Inf", which are not usable numbers in any GHCN file.
func parseFinite(field string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ScanRegistry streams the registry and calls fn for every usable line, in
// file order. Unusable lines are skipped.
func ScanRegistry(r io.Reader, fn func(RegistryEntry)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if entry, ok := ParseRegistryLine(scanner.Text()); ok {
			fn(entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read station registry: %w", err)
	}
	return nil
}
