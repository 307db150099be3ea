package dataset

import (
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/cropmind/cropmind/internal/model"
)

// Match windows and limits. The windows are fixed agronomic tolerances,
// not derived from the data.
const (
	tempWindow     = 5.0
	humidityWindow = 10.0
	moistureWindow = 10.0

	// temperature dominates crop viability, hence the 2x weight in the
	// nearest-neighbour distance
	tempWeight = 2.0

	nearestPool    = 50
	exactTopN      = 10
	nearestTopN    = 5
	exactConfDiv   = 100.0
	nearestConfDiv = 200.0
)

// Query is one observed condition set, with an optional soil-type filter.
type Query struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Moisture    float64 `json:"moisture"`
	SoilType    string  `json:"soilType,omitempty"`
}

// Result carries the grouped recommendations for one query.
type Result struct {
	Groups       []model.RecommendationGroup
	TotalMatches int
	Nearest      bool // true when the distance fallback produced the groups
}

// Matcher ranks historical records against observed conditions. Records
// load lazily on the first query and are never reloaded.
type Matcher struct {
	src     Source
	once    sync.Once
	rows    []model.HistoricalRecord
	loadErr error
}

func NewMatcher(src Source) *Matcher { return &Matcher{src: src} }

func (m *Matcher) load() {
	m.rows, m.loadErr = m.src.LoadRows()
	if m.loadErr != nil {
		log.Printf("dataset: load error: %v", m.loadErr)
		return
	}
	log.Printf("dataset: loaded %d records", len(m.rows))
}

// Rows exposes the loaded record count for health reporting.
func (m *Matcher) Rows() int {
	m.once.Do(m.load)
	return len(m.rows)
}

// Match runs the two-phase policy: exact window first, nearest-neighbour
// distance only when the window matches nothing. An empty dataset is a
// valid empty result, not an error.
func (m *Matcher) Match(q Query) (Result, error) {
	m.once.Do(m.load)
	if m.loadErr != nil {
		return Result{}, m.loadErr
	}

	exact := m.windowMatch(q)
	if len(exact) > 0 {
		groups := groupRecords(exact, exactConfidence)
		return Result{Groups: truncate(groups, exactTopN), TotalMatches: len(exact)}, nil
	}

	nearest := m.nearestMatch(q)
	if len(nearest) == 0 {
		return Result{}, nil
	}
	groups := groupRecords(nearest, nearestConfidence)
	return Result{Groups: truncate(groups, nearestTopN), TotalMatches: len(nearest), Nearest: true}, nil
}

// windowMatch selects every record inside the fixed tolerance window.
// Rows with NaN numerics fail the comparisons and drop out by
// construction.
func (m *Matcher) windowMatch(q Query) []model.HistoricalRecord {
	var out []model.HistoricalRecord
	for _, r := range m.rows {
		if !(math.Abs(r.Temperature-q.Temperature) <= tempWindow) {
			continue
		}
		if !(math.Abs(r.Humidity-q.Humidity) <= humidityWindow) {
			continue
		}
		if !(math.Abs(r.Moisture-q.Moisture) <= moistureWindow) {
			continue
		}
		if q.SoilType != "" && !strings.EqualFold(r.SoilType, q.SoilType) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// nearestMatch scores every record by weighted absolute distance and keeps
// the closest nearestPool rows. Non-finite distances are excluded before
// the sort so malformed rows can never win the cut.
func (m *Matcher) nearestMatch(q Query) []model.HistoricalRecord {
	type scored struct {
		rec  model.HistoricalRecord
		dist float64
	}
	cand := make([]scored, 0, len(m.rows))
	for _, r := range m.rows {
		d := tempWeight*math.Abs(r.Temperature-q.Temperature) +
			math.Abs(r.Humidity-q.Humidity) +
			math.Abs(r.Moisture-q.Moisture)
		if !isFinite(d) {
			continue
		}
		cand = append(cand, scored{rec: r, dist: d})
	}
	sort.SliceStable(cand, func(i, j int) bool { return cand[i].dist < cand[j].dist })
	if len(cand) > nearestPool {
		cand = cand[:nearestPool]
	}
	out := make([]model.HistoricalRecord, len(cand))
	for i, c := range cand {
		out[i] = c.rec
	}
	return out
}

func exactConfidence(n int) float64 {
	return math.Min(1.0, float64(n)/exactConfDiv)
}

// nearestConfidence deliberately shrinks as the group grows: nearest
// groups come from an arbitrary 50-row pool, so a large bucket signals an
// over-generic match rather than a strong one. Floored at 0.5.
func nearestConfidence(n int) float64 {
	return math.Max(0.5, 1.0-float64(n)/nearestConfDiv)
}

// groupRecords collapses records by (crop, fertilizer, soil type) in
// first-seen order, then sorts by confidence desc, match count desc.
func groupRecords(recs []model.HistoricalRecord, conf func(int) float64) []model.RecommendationGroup {
	type key struct{ crop, fert, soil string }
	counts := make(map[key]int, len(recs))
	var order []key
	for _, r := range recs {
		k := key{r.Crop, r.Fertilizer, r.SoilType}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	groups := make([]model.RecommendationGroup, 0, len(order))
	for _, k := range order {
		n := counts[k]
		groups = append(groups, model.RecommendationGroup{
			Crop:       k.crop,
			Fertilizer: k.fert,
			SoilType:   k.soil,
			Confidence: conf(n),
			MatchCount: n,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Confidence != groups[j].Confidence {
			return groups[i].Confidence > groups[j].Confidence
		}
		return groups[i].MatchCount > groups[j].MatchCount
	})
	return groups
}

func truncate(groups []model.RecommendationGroup, n int) []model.RecommendationGroup {
	if len(groups) > n {
		return groups[:n]
	}
	return groups
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
