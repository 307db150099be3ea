package sensorcache

import (
	"testing"
	"time"

	"github.com/cropmind/cropmind/internal/model"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedCache() (*Cache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New()
	c.now = clk.now
	return c, clk
}

func TestTTLExpiry(t *testing.T) {
	c, clk := newClockedCache()
	c.Put("tok", "V0", 55.3)

	if v, ok := c.Get("tok", "V0"); !ok || v.(float64) != 55.3 {
		t.Fatalf("fresh read: got %v/%v", v, ok)
	}

	clk.advance(59 * time.Second)
	if v, ok := c.Get("tok", "V0"); !ok || v.(float64) != 55.3 {
		t.Fatalf("59s read: got %v/%v, want live value", v, ok)
	}

	clk.advance(2 * time.Second) // 61s total
	if _, ok := c.Get("tok", "V0"); ok {
		t.Fatal("61s read: value still live past the TTL")
	}
	// The stale read evicted the entry.
	if c.Len() != 0 {
		t.Fatalf("lazy eviction left %d entries", c.Len())
	}
}

func TestLastWriteWins(t *testing.T) {
	c, _ := newClockedCache()
	c.Put("tok", "V0", 10.0)
	c.Put("tok", "V0", 20.0)
	v, ok := c.Get("tok", "V0")
	if !ok || v.(float64) != 20.0 {
		t.Fatalf("got %v/%v, want 20", v, ok)
	}
}

func TestSnapshotAllOrNothing(t *testing.T) {
	c, _ := newClockedCache()
	c.Put("tok", model.PinSoilMoisture, 55.0)
	c.Put("tok", model.PinTemperature, 28.0)

	if _, ok := c.Snapshot("tok"); ok {
		t.Fatal("partial pin set produced a snapshot")
	}

	c.Put("tok", model.PinPIR, 0.0)
	c.Put("tok", model.PinFlame, 0.0)
	c.Put("tok", model.PinHumidity, "61.5") // strings are accepted and coerced

	snap, ok := c.Snapshot("tok")
	if !ok {
		t.Fatal("complete pin set produced no snapshot")
	}
	if snap.SoilMoisture != 55.0 || snap.Temperature != 28.0 || snap.Humidity != 61.5 {
		t.Fatalf("snapshot values drifted: %+v", snap)
	}
	if snap.PH != model.DefaultPH {
		t.Fatalf("pH = %.2f, want default %.2f", snap.PH, model.DefaultPH)
	}
	if snap.Source != "push" {
		t.Fatalf("source %q", snap.Source)
	}

	c.Put("tok", model.PinPH, 7.1)
	snap, _ = c.Snapshot("tok")
	if snap.PH != 7.1 {
		t.Fatalf("reported pH %.2f not used", snap.PH)
	}
}

func TestSnapshotAbsentWhenRequiredPinExpires(t *testing.T) {
	c, clk := newClockedCache()
	for _, pin := range model.RequiredPins() {
		c.Put("tok", pin, 1.0)
	}
	clk.advance(30 * time.Second)
	c.Put("tok", model.PinSoilMoisture, 2.0) // refresh one pin only
	clk.advance(45 * time.Second)            // the other four are now 75s old

	if _, ok := c.Snapshot("tok"); ok {
		t.Fatal("snapshot built from expired required pins")
	}
}

func TestSweep(t *testing.T) {
	c, clk := newClockedCache()
	c.Put("a", "V0", 1.0)
	c.Put("b", "V0", 2.0)
	clk.advance(61 * time.Second)
	c.Put("b", "V1", 3.0)

	if n := c.Sweep(); n != 2 {
		t.Fatalf("swept %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Fatalf("%d entries left, want 1", c.Len())
	}
	if _, ok := c.Get("b", "V1"); !ok {
		t.Fatal("fresh entry swept")
	}
}

func TestUnparseableValueBlocksSnapshot(t *testing.T) {
	c, _ := newClockedCache()
	for _, pin := range model.RequiredPins() {
		c.Put("tok", pin, 1.0)
	}
	c.Put("tok", model.PinTemperature, "offline")
	if _, ok := c.Snapshot("tok"); ok {
		t.Fatal("non-numeric required pin produced a snapshot")
	}
}
