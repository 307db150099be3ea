package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/cropmind/cropmind/internal/crops"
	"github.com/cropmind/cropmind/internal/dataset"
	"github.com/cropmind/cropmind/internal/recommend"
	"github.com/cropmind/cropmind/internal/sensorcache"
	"github.com/cropmind/cropmind/internal/services/dashboard"
	"github.com/cropmind/cropmind/internal/services/ingest"
	"github.com/cropmind/cropmind/pkg/mqtt"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === Core state ===
	cache := sensorcache.New()
	go cache.StartSweeper(ctx)

	table := crops.DefaultTable()
	matcher := dataset.NewMatcher(dataset.CSVSource{Path: cfg.DatasetPath})

	var modelClient recommend.ModelClient
	if cfg.ModelURL != "" {
		modelClient = recommend.NewHTTPModelClient(cfg.ModelURL, time.Duration(cfg.ModelTimeoutMs)*time.Millisecond)
	}
	orchestrator := recommend.NewOrchestrator(matcher, modelClient)

	metrics := dashboard.NewMetrics(cache)

	// === Influx telemetry (optional) ===
	var influx influxdb2.Client
	var telemetry *ingest.Telemetry
	if cfg.InfluxToken != "" {
		influx = influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer influx.Close()
		telemetry = ingest.NewTelemetry(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket))
	} else {
		log.Printf("dashboard: no INFLUX_TOKEN, telemetry and export disabled")
	}

	// === MQTT bridge (optional) ===
	if !cfg.DisableMQ {
		client, err := mqtt.NewConn(&cfg.Broker, ctx)
		if err != nil {
			log.Fatalf("mqtt connection error: %v", err)
		}
		defer mqtt.CloseConn(client)

		consumer := mqtt.NewConsumer(client, cfg.PinTopic, nil)
		bridge := ingest.NewBridge(consumer, cache, telemetry, metrics)
		go bridge.Start(ctx)
		log.Printf("dashboard: bridge consuming %s", cfg.PinTopic)
	} else {
		log.Printf("dashboard: MQTT bridge disabled")
	}

	// === HTTP ===
	deps := dashboard.Deps{
		Cache:        cache,
		Table:        table,
		Matcher:      matcher,
		Orchestrator: orchestrator,
		Device:       dashboard.NewDeviceClient(cfg.DeviceBaseURL, time.Duration(cfg.TimeoutMs)*time.Millisecond),
		Influx:       influx,
		InfluxOrg:    cfg.InfluxOrg,
		InfluxBucket: cfg.InfluxBucket,
		Telemetry:    telemetry,
		Metrics:      metrics,
	}
	if cfg.OWMAPIKey != "" {
		deps.Weather = dashboard.NewWeatherClient(cfg.OWMAPIKey, time.Duration(cfg.TimeoutMs)*time.Millisecond)
	}

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           dashboard.NewMux(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("dashboard: HTTP listening on :%s", cfg.Port)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// === Wait for signal ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("dashboard: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	cancel()
	// allow the async Influx writer to flush
	time.Sleep(300 * time.Millisecond)
}
