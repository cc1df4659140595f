package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	weather "ghcnd-server/internal/modules/weather"
	"ghcnd-server/internal/modules/weather/aggregator"
	"ghcnd-server/internal/modules/weather/locator"
)

const defaultStationCount = 10

func (c *cli) newStationsCmd() *cobra.Command {
	var (
		lat, lon, radius   float64
		count              int
		startYear, endYear int
	)

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "Find stations around a point",
		Long: `Find GHCN-Daily stations within --radius km of --lat/--lon, nearest first.
With --start-year or --end-year only stations whose TMAX and TMIN records
cover the range are returned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := locator.Query{
				Latitude:  lat,
				Longitude: lon,
				RadiusKm:  c.cfg.DefaultRadiusKm,
				Count:     &count,
			}
			flags := cmd.Flags()
			if flags.Changed("radius") {
				q.RadiusKm = radius
			}
			if flags.Changed("start-year") {
				q.StartYear = &startYear
			}
			if flags.Changed("end-year") {
				q.EndYear = &endYear
			}

			stations, err := weather.NewServices(c.cfg).Locator.Locate(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stations)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	flags.Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	flags.Float64Var(&radius, "radius", locator.DefaultRadiusKm, "search radius in km (default DEFAULT_RADIUS_KM)")
	flags.IntVar(&count, "count", defaultStationCount, "maximum number of stations")
	flags.IntVar(&startYear, "start-year", 0, "first year the station must cover")
	flags.IntVar(&endYear, "end-year", 0, "last year the station must cover")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func (c *cli) newTemperaturesCmd() *cobra.Command {
	var q aggregator.Query

	cmd := &cobra.Command{
		Use:   "temperatures",
		Short: "Aggregate a station's temperatures",
		Long:  `Print annual and seasonal TMAX/TMIN averages for --station over an inclusive year range.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := weather.NewServices(c.cfg).Aggregator.Aggregate(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.StationID, "station", "", "GHCN station id")
	flags.IntVar(&q.StartYear, "start-year", 0, "first year (inclusive)")
	flags.IntVar(&q.EndYear, "end-year", 0, "last year (inclusive)")
	_ = cmd.MarkFlagRequired("station")
	_ = cmd.MarkFlagRequired("start-year")
	_ = cmd.MarkFlagRequired("end-year")
	return cmd
}

func (c *cli) newTemperatureCmd() *cobra.Command {
	var (
		stationID string
		year      int
		kind      string
	)

	cmd := &cobra.Command{
		Use:   "temperature",
		Short: "Average TMIN or TMAX for one year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			element, err := aggregator.ParseTemperatureType(kind)
			if err != nil {
				return err
			}
			avg, err := weather.NewServices(c.cfg).Aggregator.YearAverage(cmd.Context(), stationID, year, element)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), avg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&stationID, "station", "", "GHCN station id")
	flags.IntVar(&year, "year", 0, "calendar year")
	flags.StringVar(&kind, "type", "", "min or max")
	_ = cmd.MarkFlagRequired("station")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
