package crops

import (
	"math"
	"sort"

	"github.com/cropmind/cropmind/internal/model"
)

// outOfRangeSlope is the fixed penalty per unit of distance outside a
// condition range.
const outOfRangeSlope = 2.0

// dimensionScore rates one observed value against one condition range.
// Inside the range the score rewards proximity to the ideal, 100 at the
// ideal itself; outside, it falls linearly below zero with the distance
// to the nearest bound.
func dimensionScore(observed float64, r model.Range) float64 {
	if observed >= r.Min && observed <= r.Max {
		span := r.Max - r.Min
		if span <= 0 {
			return 100
		}
		return (1 - math.Abs(observed-r.Ideal)/span) * 100
	}
	if observed < r.Min {
		return -outOfRangeSlope * (r.Min - observed)
	}
	return -outOfRangeSlope * (observed - r.Max)
}

// Score rates a crop against one observed (moisture, temperature,
// humidity) triple: the mean of the three dimension scores.
func Score(p model.CropProfile, moisture, temperature, humidity float64) float64 {
	return (dimensionScore(moisture, p.Moisture) +
		dimensionScore(temperature, p.Temperature) +
		dimensionScore(humidity, p.Humidity)) / 3
}

// BestMatch picks the best-fitting crop for the observation. When no crop
// scores above zero the fallback crop is returned with score 0, so the
// result is non-empty for any input.
func (t *Table) BestMatch(moisture, temperature, humidity float64) model.ScoredCrop {
	scored := make([]model.ScoredCrop, 0, len(t.profiles))
	for _, p := range t.profiles {
		scored = append(scored, model.ScoredCrop{Crop: p, Score: Score(p, moisture, temperature, humidity)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > 0 && scored[0].Score > 0 {
		return scored[0]
	}
	fb, _ := t.Get(FallbackCrop)
	return model.ScoredCrop{Crop: fb, Score: 0}
}

// Rank returns every crop scored against the observation, best first.
// Used by the dashboard's comparison view.
func (t *Table) Rank(moisture, temperature, humidity float64) []model.ScoredCrop {
	scored := make([]model.ScoredCrop, 0, len(t.profiles))
	for _, p := range t.profiles {
		scored = append(scored, model.ScoredCrop{Crop: p, Score: Score(p, moisture, temperature, humidity)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}
