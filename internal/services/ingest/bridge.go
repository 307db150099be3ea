package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/cropmind/cropmind/internal/model"
	"github.com/cropmind/cropmind/internal/sensorcache"
	"github.com/cropmind/cropmind/pkg/dedup"
	"github.com/cropmind/cropmind/pkg/mqtt"
)

// ErrBadPin reports a pin name that cannot be normalized to V<digits>.
var ErrBadPin = errors.New("ingest: pin name not normalizable")

// Metrics is the bridge's counter surface, satisfied by the dashboard's
// Prometheus registry. Nil-safe through NopMetrics.
type Metrics interface {
	PinAccepted()
	PinRejected()
	PinDeduped()
}

// NopMetrics discards all counts.
type NopMetrics struct{}

func (NopMetrics) PinAccepted() {}
func (NopMetrics) PinRejected() {}
func (NopMetrics) PinDeduped()  {}

// Bridge consumes pin-update messages from the broker and feeds the live
// cache, deduplicating QoS1 redeliveries by payload hash.
type Bridge struct {
	consumer  mqtt.IConsumer[model.PinUpdate]
	cache     *sensorcache.Cache
	window    *dedup.Window
	telemetry *Telemetry // nil when Influx is not configured
	metrics   Metrics
}

func NewBridge(consumer mqtt.IConsumer[model.PinUpdate], cache *sensorcache.Cache, telemetry *Telemetry, metrics Metrics) *Bridge {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Bridge{
		consumer:  consumer,
		cache:     cache,
		window:    dedup.New(10*time.Minute, 20000),
		telemetry: telemetry,
		metrics:   metrics,
	}
}

// Start injects the handler and blocks until the context closes.
func (b *Bridge) Start(ctx context.Context) {
	b.consumer.SetHandler(b.handle)
	go b.consumer.ConsumeMessage(ctx)
	<-ctx.Done()
}

// handle processes one broker message. Decode problems are logged and
// swallowed so a bad publisher cannot stall the stream.
func (b *Bridge) handle(_ string, msg paho.Message) error {
	// Dedup before decode: identical QoS1 redeliveries share a hash, and
	// legitimate repeat readings differ by their timestamp field.
	h := sha256.Sum256(msg.Payload())
	if !b.window.Admit(hex.EncodeToString(h[:])) {
		b.metrics.PinDeduped()
		return nil
	}

	var u model.PinUpdate
	if err := json.Unmarshal(msg.Payload(), &u); err != nil {
		log.Printf("ingest: bad payload on %s: %v", msg.Topic(), err)
		b.metrics.PinRejected()
		return nil
	}

	pin, err := NormalizePin(u.Pin)
	if err != nil {
		log.Printf("ingest: %v (token=%s pin=%q)", err, u.Token, u.Pin)
		b.metrics.PinRejected()
		return nil
	}
	if strings.TrimSpace(u.Token) == "" {
		log.Printf("ingest: update without token on %s", msg.Topic())
		b.metrics.PinRejected()
		return nil
	}

	b.cache.Put(u.Token, pin, u.Value)
	b.metrics.PinAccepted()
	u.Pin = pin
	b.telemetry.Record(u)
	return nil
}

// NormalizePin maps firmware spellings ("v0", "0", " V12 ") to the
// canonical V<digits> form.
func NormalizePin(raw string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(raw))
	if p == "" {
		return "", ErrBadPin
	}
	if p[0] != 'V' {
		p = "V" + p
	}
	if len(p) < 2 {
		return "", ErrBadPin
	}
	for _, r := range p[1:] {
		if r < '0' || r > '9' {
			return "", ErrBadPin
		}
	}
	return p, nil
}
