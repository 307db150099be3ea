package entities

import "time"

// Virtual pin assignment of the field unit firmware.
const (
	PinSoilMoisture = "V0"
	PinPIR          = "V1"
	PinFlame        = "V2"
	PinTemperature  = "V3"
	PinHumidity     = "V4"
	PinPH           = "V8"
)

// DefaultPH is substituted when a unit carries no pH probe.
const DefaultPH = 6.8

// SensorSnapshot is the composed live view of one field unit. It is only
// materialized when every required pin has a fresh value; pH is the one
// optional reading.
type SensorSnapshot struct {
	SoilMoisture float64   `json:"soilMoisture"`
	PIR          float64   `json:"pir"`
	Flame        float64   `json:"flame"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	PH           float64   `json:"ph"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"` // "push" (cache) or "poll" (device API)
}

// RequiredPins lists the pins a snapshot cannot be built without.
func RequiredPins() []string {
	return []string{PinSoilMoisture, PinPIR, PinFlame, PinTemperature, PinHumidity}
}
