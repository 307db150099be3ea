package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/cropmind/cropmind/pkg/mqtt"
)

type Config struct {
	Port string

	// Broker for the push path. Empty host disables the bridge.
	Broker    mqtt.Config
	PinTopic  string
	DisableMQ bool

	// Historical dataset file.
	DatasetPath string

	// External model service. Empty disables the tier.
	ModelURL       string
	ModelTimeoutMs int

	// Device cloud for the direct-poll fallback.
	DeviceBaseURL string

	// OpenWeather. Empty key disables /api/weather.
	OWMAPIKey string

	// Influx telemetry sink. Empty token disables it.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	TimeoutMs int
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func loadConfig() Config {
	return Config{
		Port: envStr("PORT", "8080"),

		Broker: mqtt.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", ""),
			Password: envStr("MQTT_PASSWORD", ""),
			ClientID: envStr("HOSTNAME", "cropmind-dashboard"),
		},
		PinTopic:  envStr("MQTT_PIN_TOPIC", "sensor/pin/#"),
		DisableMQ: envBool("MQTT_DISABLED", false),

		DatasetPath: envStr("DATASET_PATH", "data/crop_fertilizer.csv"),

		ModelURL:       envStr("MODEL_URL", ""),
		ModelTimeoutMs: envInt("MODEL_TIMEOUT_MS", 10000),

		DeviceBaseURL: envStr("DEVICE_BASE_URL", "https://blynk.cloud"),

		OWMAPIKey: envStr("OWM_API_KEY", ""),

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "cropmind"),
		InfluxBucket: envStr("INFLUX_BUCKET", "readings"),

		TimeoutMs: envInt("TIMEOUT_MS", 10000),
	}
}
