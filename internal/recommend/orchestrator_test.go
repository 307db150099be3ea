package recommend

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cropmind/cropmind/internal/dataset"
	"github.com/cropmind/cropmind/internal/model"
)

type fakeMatcher struct {
	res dataset.Result
	err error
}

func (f fakeMatcher) Match(dataset.Query) (dataset.Result, error) { return f.res, f.err }

type fakeModel struct {
	adv Advisory
	err error
}

func (f fakeModel) Recommend(context.Context, Query) (Advisory, error) { return f.adv, f.err }

func TestDatasetTierWins(t *testing.T) {
	m := fakeMatcher{res: dataset.Result{
		Groups: []model.RecommendationGroup{
			{Crop: "Rice", Fertilizer: "Urea", SoilType: "Clayey", Confidence: 0.42, MatchCount: 42},
			{Crop: "Maize", Fertilizer: "DAP", SoilType: "Loamy", Confidence: 0.1, MatchCount: 10},
		},
		TotalMatches: 52,
	}}
	// The model tier must never be reached.
	o := NewOrchestrator(m, fakeModel{err: errors.New("should not be called")})

	adv, err := o.Recommend(context.Background(), Query{Moisture: 55, Temperature: 25, Humidity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if adv.Source != SourceDataset {
		t.Fatalf("source %q, want dataset", adv.Source)
	}
	if adv.Crop != "Rice" || adv.MatchCount != 42 || adv.Confidence != 0.42 {
		t.Fatalf("primary group not propagated: %+v", adv)
	}
	if !containsLine(adv.Recommendations, "Alternative: Maize") {
		t.Fatalf("alternatives missing: %v", adv.Recommendations)
	}
}

func TestModelTierPassthrough(t *testing.T) {
	o := NewOrchestrator(fakeMatcher{}, fakeModel{adv: Advisory{
		Recommendations: []string{"Plant Rice"},
		Confidence:      0.9,
		Source:          SourceEnhanced,
	}})
	adv, err := o.Recommend(context.Background(), Query{Moisture: 55, Temperature: 25, Humidity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if adv.Source != SourceEnhanced || adv.Confidence != 0.9 {
		t.Fatalf("model advisory altered: %+v", adv)
	}
}

func TestFallsThroughToRules(t *testing.T) {
	// Empty dataset, failing model: the rule tier must answer.
	o := NewOrchestrator(fakeMatcher{}, fakeModel{err: errors.New("connection refused")})
	adv, err := o.Recommend(context.Background(), Query{Moisture: 55, Temperature: 90, Humidity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if adv.Source != SourceRuleBased {
		t.Fatalf("source %q, want rule-based", adv.Source)
	}
	if !containsLine(adv.Recommendations, "Extreme heat") {
		t.Fatalf("missing extreme-heat line: %v", adv.Recommendations)
	}
	if adv.Confidence >= 0.95 {
		t.Fatalf("confidence %.2f, want < 0.95", adv.Confidence)
	}
}

func TestNilModelSkipsTier(t *testing.T) {
	o := NewOrchestrator(fakeMatcher{}, nil)
	adv, err := o.Recommend(context.Background(), Query{Moisture: 55, Temperature: 25, Humidity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if adv.Source != SourceRuleBased {
		t.Fatalf("source %q, want rule-based", adv.Source)
	}
}

func TestEmptyModelAnswerIsTierFailure(t *testing.T) {
	o := NewOrchestrator(fakeMatcher{}, fakeModel{adv: Advisory{Source: SourceModel}})
	adv, err := o.Recommend(context.Background(), Query{Moisture: 55, Temperature: 25, Humidity: 60})
	if err != nil {
		t.Fatal(err)
	}
	if adv.Source != SourceRuleBased {
		t.Fatalf("empty model answer accepted: %+v", adv)
	}
}

func TestNonFiniteInputRejected(t *testing.T) {
	o := NewOrchestrator(fakeMatcher{}, nil)
	for _, bad := range []Query{
		{Moisture: math.NaN(), Temperature: 25, Humidity: 60},
		{Moisture: 55, Temperature: math.Inf(1), Humidity: 60},
	} {
		if _, err := o.Recommend(context.Background(), bad); !errors.Is(err, ErrNotFinite) {
			t.Fatalf("query %+v: err %v, want ErrNotFinite", bad, err)
		}
	}
}
