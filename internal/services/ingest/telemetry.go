package ingest

import (
	"fmt"
	"log"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/cropmind/cropmind/internal/model"
)

// Measurement written for every accepted pin update.
const Measurement = "pin_update"

// Telemetry mirrors accepted pin updates into Influx and tracks the last
// async write error for /healthz. It is an event log, not a store of
// record: the cache stays correct with telemetry disabled.
type Telemetry struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
	written int64
}

// NewTelemetry wraps the async write API and drains its error channel.
func NewTelemetry(w api.WriteAPI) *Telemetry {
	t := &Telemetry{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				t.mu.Lock()
				t.lastErr = time.Now()
				t.mu.Unlock()
				log.Printf("ingest: influx write error: %v", err)
			}
		}
	}()
	return t
}

// Record writes one pin update as a point. Nil receiver means telemetry
// is disabled; callers don't need to check.
func (t *Telemetry) Record(u model.PinUpdate) {
	if t == nil {
		return
	}
	ts := u.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	tags := map[string]string{
		"token": u.Token,
		"pin":   u.Pin,
	}
	fields := map[string]interface{}{
		"value": coerceField(u.Value),
	}
	t.api.WritePoint(influxdb2.NewPoint(Measurement, tags, fields, ts))

	t.mu.Lock()
	t.written++
	t.mu.Unlock()
}

// LastErrorAge reports how long the writer has gone without an error.
func (t *Telemetry) LastErrorAge() time.Duration {
	if t == nil {
		return 99999 * time.Hour
	}
	t.mu.RLock()
	last := t.lastErr
	t.mu.RUnlock()
	return time.Since(last)
}

// Written reports the points recorded since startup.
func (t *Telemetry) Written() int64 {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.written
}

// Influx field values must be a concrete scalar; string pin values are
// stored as the string field they are.
func coerceField(v any) interface{} {
	switch t := v.(type) {
	case float64, int64, int, bool, string:
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}
