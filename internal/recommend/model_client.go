package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ModelClient is the external crop-model collaborator: a remote service
// trained on the Kaggle dataset that returns ready-made recommendations.
// Failures are the caller's signal to fall through to the next tier.
type ModelClient interface {
	Recommend(ctx context.Context, q Query) (Advisory, error)
}

// HTTPModelClient talks to the model service over REST.
type HTTPModelClient struct {
	base string
	http *http.Client
}

func NewHTTPModelClient(base string, timeout time.Duration) *HTTPModelClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPModelClient{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPModelClient) Recommend(ctx context.Context, q Query) (Advisory, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return Advisory{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predict", bytes.NewReader(body))
	if err != nil {
		return Advisory{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return Advisory{}, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Advisory{}, fmt.Errorf("model service: POST /predict -> %s", res.Status)
	}

	var out Advisory
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Advisory{}, err
	}
	if out.Source == "" {
		out.Source = SourceModel
	}
	return out, nil
}
