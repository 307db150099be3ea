package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cropmind/cropmind/internal/crops"
	"github.com/cropmind/cropmind/internal/dataset"
	"github.com/cropmind/cropmind/internal/model"
	"github.com/cropmind/cropmind/internal/recommend"
	"github.com/cropmind/cropmind/internal/sensorcache"
)

func testDeps(src dataset.Source) Deps {
	matcher := dataset.NewMatcher(src)
	return Deps{
		Cache:        sensorcache.New(),
		Table:        crops.DefaultTable(),
		Matcher:      matcher,
		Orchestrator: recommend.NewOrchestrator(matcher, nil),
	}
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestRecommendRuleBasedPath(t *testing.T) {
	mux := NewMux(testDeps(dataset.StaticSource{}))
	rr := doJSON(t, mux, http.MethodPost, "/api/recommend",
		`{"moisture":55,"temperature":90,"humidity":60}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var adv recommend.Advisory
	if err := json.Unmarshal(rr.Body.Bytes(), &adv); err != nil {
		t.Fatal(err)
	}
	if adv.Source != recommend.SourceRuleBased {
		t.Fatalf("source %q, want rule-based", adv.Source)
	}
	if adv.Confidence >= 0.95 {
		t.Fatalf("confidence %.2f, want < 0.95", adv.Confidence)
	}
}

func TestRecommendDatasetPath(t *testing.T) {
	src := make(dataset.StaticSource, 0, 20)
	for i := 0; i < 20; i++ {
		src = append(src, model.HistoricalRecord{
			Temperature: 25, Humidity: 60, Moisture: 55,
			SoilType: "Clayey", Crop: "Rice", Fertilizer: "Urea",
		})
	}
	mux := NewMux(testDeps(src))
	rr := doJSON(t, mux, http.MethodPost, "/api/recommend",
		`{"moisture":55,"temperature":25,"humidity":60}`)
	var adv recommend.Advisory
	if err := json.Unmarshal(rr.Body.Bytes(), &adv); err != nil {
		t.Fatal(err)
	}
	if adv.Source != recommend.SourceDataset || adv.Crop != "Rice" {
		t.Fatalf("got %+v, want dataset/Rice", adv)
	}
}

func TestRecommendRejectsBadJSON(t *testing.T) {
	mux := NewMux(testDeps(dataset.StaticSource{}))
	rr := doJSON(t, mux, http.MethodPost, "/api/recommend", `{"moisture":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestDatasetMatchEndpoint(t *testing.T) {
	src := dataset.StaticSource{
		{Temperature: 25, Humidity: 60, Moisture: 55, SoilType: "Clay", Crop: "Rice", Fertilizer: "Urea"},
	}
	mux := NewMux(testDeps(src))
	rr := doJSON(t, mux, http.MethodPost, "/api/dataset/match",
		`{"temperature":25,"humidity":60,"moisture":55}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Recommendations []model.RecommendationGroup `json:"recommendations"`
		TotalMatches    int                         `json:"totalMatches"`
		Source          string                      `json:"source"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Source != "dataset" || out.TotalMatches != 1 || len(out.Recommendations) != 1 {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestBestCropEndpoint(t *testing.T) {
	mux := NewMux(testDeps(dataset.StaticSource{}))
	req := httptest.NewRequest(http.MethodGet, "/api/crops/best?moisture=70&temperature=27&humidity=75", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	var out model.ScoredCrop
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Crop.Name != "Rice" {
		t.Fatalf("best crop %q, want Rice at its ideals", out.Crop.Name)
	}
}

func TestSensorsNoData(t *testing.T) {
	mux := NewMux(testDeps(dataset.StaticSource{}))
	req := httptest.NewRequest(http.MethodGet, "/api/sensors/tok1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "no_data") {
		t.Fatalf("body %q", rr.Body.String())
	}
}

func TestSensorsFromCache(t *testing.T) {
	deps := testDeps(dataset.StaticSource{})
	for pin, v := range map[string]float64{
		model.PinSoilMoisture: 55, model.PinPIR: 0, model.PinFlame: 0,
		model.PinTemperature: 28, model.PinHumidity: 61,
	} {
		deps.Cache.Put("tok1", pin, v)
	}
	mux := NewMux(deps)
	req := httptest.NewRequest(http.MethodGet, "/api/sensors/tok1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Snapshot model.SensorSnapshot `json:"snapshot"`
		Status   string               `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Snapshot.Source != "push" || out.Snapshot.PH != model.DefaultPH {
		t.Fatalf("snapshot %+v", out.Snapshot)
	}
	if out.Status != "normal" {
		t.Fatalf("status %q, want normal", out.Status)
	}
}

type fakePoller struct {
	vals map[string]float64
	err  error
}

func (f fakePoller) Poll(context.Context, string) (map[string]float64, error) {
	return f.vals, f.err
}

func TestSensorsPollFallback(t *testing.T) {
	deps := testDeps(dataset.StaticSource{})
	deps.Device = fakePoller{vals: map[string]float64{
		model.PinSoilMoisture: 40, model.PinPIR: 1, model.PinFlame: 0,
		model.PinTemperature: 30, model.PinHumidity: 70,
	}}
	mux := NewMux(deps)
	req := httptest.NewRequest(http.MethodGet, "/api/sensors/tok2", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Snapshot model.SensorSnapshot `json:"snapshot"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Snapshot.Source != "poll" || out.Snapshot.SoilMoisture != 40 {
		t.Fatalf("snapshot %+v", out.Snapshot)
	}
	// Poll results are written back so the next read hits the cache.
	if _, ok := deps.Cache.Get("tok2", model.PinSoilMoisture); !ok {
		t.Fatal("poll results not cached")
	}
}

func TestSensorsPollFailure(t *testing.T) {
	deps := testDeps(dataset.StaticSource{})
	deps.Device = fakePoller{err: errors.New("cloud down")}
	mux := NewMux(deps)
	req := httptest.NewRequest(http.MethodGet, "/api/sensors/tok3", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404 when cache and poll both miss", rr.Code)
	}
}

func TestClassifyFlame(t *testing.T) {
	status, alerts := classify(model.SensorSnapshot{
		SoilMoisture: 55, Temperature: 25, Humidity: 60, Flame: 1,
	})
	if status != "warning" || len(alerts) != 1 {
		t.Fatalf("status %q alerts %v", status, alerts)
	}
}

func TestExportNotConfigured(t *testing.T) {
	mux := NewMux(testDeps(dataset.StaticSource{}))
	req := httptest.NewRequest(http.MethodGet, "/api/export/readings", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503 without Influx", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	mux := NewMux(testDeps(dataset.StaticSource{}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("body %q", rr.Body.String())
	}
}
