package sensorcache

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cropmind/cropmind/internal/model"
)

const (
	// TTL is the freshness window for a pin value.
	TTL = 60 * time.Second
	// SweepInterval drives the background eviction pass. The sweep only
	// bounds memory; lazy expiry on read is the correctness guarantee.
	SweepInterval = 30 * time.Second
)

type entry struct {
	value any
	at    time.Time
}

// Cache holds the latest pushed value per (token, pin) with a fixed
// freshness window. Reads past the window behave as if the entry never
// existed and evict it eagerly.
type Cache struct {
	mu   sync.RWMutex
	pins map[string]map[string]entry // token -> pin -> entry
	ttl  time.Duration
	now  func() time.Time
}

func New() *Cache {
	return &Cache{
		pins: make(map[string]map[string]entry),
		ttl:  TTL,
		now:  time.Now,
	}
}

// Put overwrites-or-inserts the latest value for a pin, stamping the
// current wall-clock time. Value types are not validated.
func (c *Cache) Put(token, pin string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.pins[token]
	if !ok {
		m = make(map[string]entry)
		c.pins[token] = m
	}
	m[pin] = entry{value: value, at: c.now()}
}

// Get returns the live value for a pin, or absent when never written or
// stale. Stale entries are evicted on the spot.
func (c *Cache) Get(token, pin string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(token, pin)
}

func (c *Cache) getLocked(token, pin string) (any, bool) {
	m, ok := c.pins[token]
	if !ok {
		return nil, false
	}
	e, ok := m[pin]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.at) > c.ttl {
		delete(m, pin)
		if len(m) == 0 {
			delete(c.pins, token)
		}
		return nil, false
	}
	return e.value, true
}

// Snapshot composes the live sensor view for one token. All required pins
// must be fresh and numeric or the whole call returns absent; partial
// snapshots are never produced. pH alone is optional and defaults.
func (c *Cache) Snapshot(token string) (model.SensorSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vals := make(map[string]float64, 6)
	var newest time.Time
	for _, pin := range model.RequiredPins() {
		raw, ok := c.getLocked(token, pin)
		if !ok {
			return model.SensorSnapshot{}, false
		}
		f, ok := toFloat(raw)
		if !ok {
			return model.SensorSnapshot{}, false
		}
		vals[pin] = f
		if at := c.pins[token][pin].at; at.After(newest) {
			newest = at
		}
	}

	ph := model.DefaultPH
	if raw, ok := c.getLocked(token, model.PinPH); ok {
		if f, ok := toFloat(raw); ok {
			ph = f
		}
	}

	return model.SensorSnapshot{
		SoilMoisture: vals[model.PinSoilMoisture],
		PIR:          vals[model.PinPIR],
		Flame:        vals[model.PinFlame],
		Temperature:  vals[model.PinTemperature],
		Humidity:     vals[model.PinHumidity],
		PH:           ph,
		Timestamp:    newest,
		Source:       "push",
	}, true
}

// Sweep evicts every stale entry and reports how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for token, m := range c.pins {
		for pin, e := range m {
			if now.Sub(e.at) > c.ttl {
				delete(m, pin)
				removed++
			}
		}
		if len(m) == 0 {
			delete(c.pins, token)
		}
	}
	return removed
}

// StartSweeper runs the periodic eviction pass until the context closes.
func (c *Cache) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				log.Printf("sensorcache: swept %d stale entries", n)
			}
		}
	}
}

// Len reports the number of live pin entries across all tokens.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, m := range c.pins {
		n += len(m)
	}
	return n
}

// toFloat coerces the loosely typed pin values the bridge accepts.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
