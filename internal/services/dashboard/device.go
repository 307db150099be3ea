package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cropmind/cropmind/internal/model"
)

// DeviceClient pulls pin values straight from the device cloud when the
// push cache has no snapshot for a token. Blynk-style value API:
// GET {base}/external/api/get?token={token}&{pin} -> raw value text.
type DeviceClient struct {
	base string
	http *http.Client
	cb   *gobreaker.CircuitBreaker
}

func NewDeviceClient(base string, timeout time.Duration) *DeviceClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DeviceClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "device-cloud",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Poll fetches every snapshot pin for one token. All required pins must
// answer or the poll fails as a whole; the optional pH pin may be absent.
func (c *DeviceClient) Poll(ctx context.Context, token string) (map[string]float64, error) {
	res, err := c.cb.Execute(func() (any, error) {
		out := make(map[string]float64, 6)
		for _, pin := range model.RequiredPins() {
			v, err := c.getPin(ctx, token, pin)
			if err != nil {
				return nil, fmt.Errorf("pin %s: %w", pin, err)
			}
			out[pin] = v
		}
		if v, err := c.getPin(ctx, token, model.PinPH); err == nil {
			out[model.PinPH] = v
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]float64), nil
}

func (c *DeviceClient) getPin(ctx context.Context, token, pin string) (float64, error) {
	url := fmt.Sprintf("%s/external/api/get?token=%s&%s", c.base, token, pin)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("device cloud status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable value %q", strings.TrimSpace(string(b)))
	}
	return f, nil
}
