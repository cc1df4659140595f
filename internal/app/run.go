package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ghcnd-server/internal/config"
	db "ghcnd-server/internal/db"
	httpapi "ghcnd-server/internal/httpapi"
	"ghcnd-server/internal/migrate"
	querylog "ghcnd-server/internal/modules/querylog"
	weather "ghcnd-server/internal/modules/weather"
	weathercontroller "ghcnd-server/internal/modules/weather/controller"
	"ghcnd-server/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"stationsURL", cfg.StationsURL,
		"inventoryURL", cfg.InventoryURL,
		"byStationURL", cfg.ByStationURL,
		"fetchTimeout", cfg.FetchTimeout,
		"defaultRadiusKm", cfg.DefaultRadiusKm,
		"queryLogPath", cfg.QueryLogPath,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
	)

	var dbConn *sql.DB
	if cfg.QueryLogEnabled() {
		conn, err := OpenQueryLog(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(conn); closeErr != nil {
				slog.Error("db close", "error", closeErr)
			}
		}()
		dbConn = conn
	} else {
		slog.Info("query log disabled")
	}

	mux := httpapi.NewMux(dbConn)
	recorder := querylog.RegisterFeature(mux, dbConn)

	// A nil *mqtt.Publisher stored in the interface would not compare equal
	// to nil, so the interface is only assigned when MQTT is enabled.
	var publisher weathercontroller.ResultPublisher
	var mqttPublisher *mqtt.Publisher
	if cfg.MQTTEnabled() {
		mqttPublisher = mqtt.NewPublisher(cfg, slog.Default())

		// Short initial timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := mqttPublisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing, paho retries in background)", "error", err)
		}
		publisher = mqttPublisher
	}

	weather.RegisterFeature(mux, cfg, weather.NewServices(cfg), recorder, publisher)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mqttPublisher != nil {
		slog.Info("mqtt disconnecting")
		mqttPublisher.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// OpenQueryLog opens the query log database and brings its schema up to date.
func OpenQueryLog(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return nil, err
	}

	applied, err := migrate.Run(ctx, conn)
	if err != nil {
		_ = db.Close(conn)
		return nil, err
	}
	slog.Info("query log ready", "path", cfg.QueryLogPath, "migrationsApplied", len(applied))
	return conn, nil
}
