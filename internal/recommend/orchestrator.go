package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cropmind/cropmind/internal/dataset"
)

// Source tags carried in every advisory.
const (
	SourceDataset   = "dataset"
	SourceModel     = "kaggle"
	SourceEnhanced  = "kaggle-enhanced"
	SourceRuleBased = "rule-based"
)

// ErrNotFinite reports an argument-contract violation: observed values
// must be finite numbers, validated before the tiers run.
var ErrNotFinite = errors.New("recommend: observed values must be finite")

const maxAlternatives = 3

// Query is one observed reading.
type Query struct {
	Moisture    float64 `json:"moisture"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Advisory is the final recommendation for one reading.
type Advisory struct {
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	Source          string   `json:"source"`
	Crop            string   `json:"crop,omitempty"`
	Fertilizer      string   `json:"fertilizer,omitempty"`
	SoilType        string   `json:"soilType,omitempty"`
	MatchCount      int      `json:"matchCount,omitempty"`
}

// DatasetMatcher is the historical-dataset tier.
type DatasetMatcher interface {
	Match(q dataset.Query) (dataset.Result, error)
}

// Orchestrator layers the recommendation tiers: dataset matcher, external
// model, rule-based synthesis. The first tier yielding a non-empty result
// wins; tier failures are logged and never surfaced while a lower tier
// remains.
type Orchestrator struct {
	matcher DatasetMatcher
	model   ModelClient // nil when no model service is configured
	modelCB *gobreaker.CircuitBreaker
}

func NewOrchestrator(matcher DatasetMatcher, model ModelClient) *Orchestrator {
	return &Orchestrator{
		matcher: matcher,
		model:   model,
		modelCB: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "model-service",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Recommend produces the advisory for one reading.
func (o *Orchestrator) Recommend(ctx context.Context, q Query) (Advisory, error) {
	if !finite(q.Moisture) || !finite(q.Temperature) || !finite(q.Humidity) {
		return Advisory{}, ErrNotFinite
	}

	if adv, ok := o.fromDataset(q); ok {
		return adv, nil
	}
	if adv, ok := o.fromModel(ctx, q); ok {
		return adv, nil
	}
	return ruleBased(q.Moisture, q.Temperature, q.Humidity), nil
}

func (o *Orchestrator) fromDataset(q Query) (Advisory, bool) {
	if o.matcher == nil {
		return Advisory{}, false
	}
	res, err := o.matcher.Match(dataset.Query{
		Temperature: q.Temperature,
		Humidity:    q.Humidity,
		Moisture:    q.Moisture,
	})
	if err != nil {
		log.Printf("recommend: dataset tier error: %v", err)
		return Advisory{}, false
	}
	if len(res.Groups) == 0 {
		return Advisory{}, false
	}

	top := res.Groups[0]
	lines := []string{
		fmt.Sprintf("Recommended crop: %s", top.Crop),
		fmt.Sprintf("Fertilizer: %s", top.Fertilizer),
		fmt.Sprintf("Soil type: %s", top.SoilType),
		fmt.Sprintf("Confidence: %.0f%% (%d matching records)", top.Confidence*100, top.MatchCount),
	}
	for i, g := range res.Groups[1:] {
		if i >= maxAlternatives {
			break
		}
		lines = append(lines, fmt.Sprintf("Alternative: %s with %s", g.Crop, g.Fertilizer))
	}

	return Advisory{
		Recommendations: lines,
		Confidence:      top.Confidence,
		Source:          SourceDataset,
		Crop:            top.Crop,
		Fertilizer:      top.Fertilizer,
		SoilType:        top.SoilType,
		MatchCount:      top.MatchCount,
	}, true
}

// fromModel calls the external model behind a circuit breaker. A timeout,
// an open breaker, or an empty answer all count as "this tier produced
// nothing".
func (o *Orchestrator) fromModel(ctx context.Context, q Query) (Advisory, bool) {
	if o.model == nil {
		return Advisory{}, false
	}
	res, err := o.modelCB.Execute(func() (any, error) {
		adv, err := o.model.Recommend(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(adv.Recommendations) == 0 {
			return nil, errors.New("empty model answer")
		}
		return adv, nil
	})
	if err != nil {
		log.Printf("recommend: model tier unavailable: %v (cb=%v)", err, o.modelCB.State())
		return Advisory{}, false
	}
	return res.(Advisory), true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
