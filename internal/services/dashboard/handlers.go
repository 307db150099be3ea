package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cropmind/cropmind/internal/crops"
	"github.com/cropmind/cropmind/internal/dataset"
	"github.com/cropmind/cropmind/internal/model"
	"github.com/cropmind/cropmind/internal/recommend"
	"github.com/cropmind/cropmind/internal/sensorcache"
	"github.com/cropmind/cropmind/internal/services/ingest"
)

// Poller is the direct device-cloud fallback used when the cache has no
// snapshot.
type Poller interface {
	Poll(ctx context.Context, token string) (map[string]float64, error)
}

// Deps is everything the composition root hands the HTTP layer. Optional
// collaborators (Weather, Device, Influx, Telemetry, Metrics) may be nil.
type Deps struct {
	Cache        *sensorcache.Cache
	Table        *crops.Table
	Matcher      *dataset.Matcher
	Orchestrator *recommend.Orchestrator
	Weather      *WeatherClient
	Device       Poller
	Influx       influxdb2.Client
	InfluxOrg    string
	InfluxBucket string
	Telemetry    *ingest.Telemetry
	Metrics      *Metrics
}

// NewMux wires all dashboard routes.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", d.handleHealth)
	mux.HandleFunc("/readyz", d.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/recommend", d.handleRecommend)
	mux.HandleFunc("/api/dataset/match", d.handleDatasetMatch)
	mux.HandleFunc("/api/crops/best", d.handleBestCrop)
	mux.HandleFunc("/api/sensors/", d.handleSensors)
	mux.HandleFunc("/api/weather", d.handleWeather)
	mux.HandleFunc("/api/export/readings", d.handleExport)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// POST /api/recommend {moisture, temperature, humidity}
func (d Deps) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	var q recommend.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	adv, err := d.Orchestrator.Recommend(ctx, q)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFinite) {
			writeError(w, http.StatusBadRequest, "non_finite_input")
			return
		}
		log.Printf("dashboard: recommend error: %v", err)
		writeError(w, http.StatusInternalServerError, "recommend_failed")
		return
	}
	if d.Metrics != nil {
		d.Metrics.RecommendationServed(adv.Source)
	}
	writeJSON(w, http.StatusOK, adv)
}

// POST /api/dataset/match {temperature, humidity, moisture, soilType?}
func (d Deps) handleDatasetMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	var q dataset.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	res, err := d.Matcher.Match(q)
	if err != nil {
		log.Printf("dashboard: dataset match error: %v", err)
		writeError(w, http.StatusInternalServerError, "dataset_unavailable")
		return
	}
	groups := res.Groups
	if groups == nil {
		groups = []model.RecommendationGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": groups,
		"totalMatches":    res.TotalMatches,
		"source":          "dataset",
	})
}

// GET /api/crops/best?moisture=..&temperature=..&humidity=..
func (d Deps) handleBestCrop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, errM := strconv.ParseFloat(q.Get("moisture"), 64)
	t, errT := strconv.ParseFloat(q.Get("temperature"), 64)
	h, errH := strconv.ParseFloat(q.Get("humidity"), 64)
	if errM != nil || errT != nil || errH != nil {
		writeError(w, http.StatusBadRequest, "bad_query")
		return
	}
	writeJSON(w, http.StatusOK, d.Table.BestMatch(m, t, h))
}

// GET /api/sensors/{token}
func (d Deps) handleSensors(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/api/sensors/")
	if token == "" || strings.Contains(token, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	snap, ok := d.Cache.Snapshot(token)
	if !ok {
		snap, ok = d.pollDevice(r.Context(), token)
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no_data")
		return
	}

	status, alerts := classify(snap)
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot": snap,
		"status":   status,
		"alerts":   alerts,
	})
}

// pollDevice asks the device cloud directly and feeds successful answers
// back into the cache so the next read is a push-path hit.
func (d Deps) pollDevice(ctx context.Context, token string) (model.SensorSnapshot, bool) {
	if d.Device == nil {
		return model.SensorSnapshot{}, false
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	vals, err := d.Device.Poll(pctx, token)
	if d.Metrics != nil {
		d.Metrics.DevicePoll(err == nil)
	}
	if err != nil {
		log.Printf("dashboard: device poll for %s failed: %v", token, err)
		return model.SensorSnapshot{}, false
	}
	for pin, v := range vals {
		d.Cache.Put(token, pin, v)
	}

	ph := model.DefaultPH
	if v, ok := vals[model.PinPH]; ok {
		ph = v
	}
	return model.SensorSnapshot{
		SoilMoisture: vals[model.PinSoilMoisture],
		PIR:          vals[model.PinPIR],
		Flame:        vals[model.PinFlame],
		Temperature:  vals[model.PinTemperature],
		Humidity:     vals[model.PinHumidity],
		PH:           ph,
		Timestamp:    time.Now().UTC(),
		Source:       "poll",
	}, true
}

// classify flags readings outside the plausible operating band.
func classify(s model.SensorSnapshot) (string, []string) {
	var alerts []string
	if s.Flame > 0 {
		alerts = append(alerts, "Flame detected near the unit")
	}
	if s.Temperature < 0 || s.Temperature > 50 {
		alerts = append(alerts, fmt.Sprintf("Temperature out of range (%.1f°C)", s.Temperature))
	}
	if s.Humidity < 20 || s.Humidity > 95 {
		alerts = append(alerts, fmt.Sprintf("Humidity out of range (%.0f%%)", s.Humidity))
	}
	if s.SoilMoisture < 5 || s.SoilMoisture > 95 {
		alerts = append(alerts, fmt.Sprintf("Soil moisture out of range (%.0f%%)", s.SoilMoisture))
	}
	if len(alerts) > 0 {
		return "warning", alerts
	}
	return "normal", []string{}
}

// GET /api/weather?lat=..&lon=..
func (d Deps) handleWeather(w http.ResponseWriter, r *http.Request) {
	if d.Weather == nil {
		writeError(w, http.StatusServiceUnavailable, "weather_not_configured")
		return
	}
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "bad_query")
		return
	}
	wx, err := d.Weather.Current(r.Context(), lat, lon)
	if err != nil {
		log.Printf("dashboard: weather fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "weather_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, wx)
}

// GET /api/export/readings?minutes=..&limit=.. -> CSV
func (d Deps) handleExport(w http.ResponseWriter, r *http.Request) {
	if d.Influx == nil {
		writeError(w, http.StatusServiceUnavailable, "export_not_configured")
		return
	}
	minutes := clampQueryInt(r, "minutes", 1440, 1, 7*24*60)
	limit := clampQueryInt(r, "limit", 500, 1, 5000)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r._field == "value")
  |> keep(columns: ["_time","_value","token","pin"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, d.InfluxBucket, minutes, ingest.Measurement, limit)

	res, err := d.Influx.QueryAPI(d.InfluxOrg).Query(ctx, flux)
	if err != nil {
		log.Printf("dashboard: export query failed: %v", err)
		writeError(w, http.StatusBadGateway, "export_query_failed")
		return
	}
	defer res.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.csv"`)
	_, _ = fmt.Fprintln(w, "time,token,pin,value")
	for res.Next() {
		rec := res.Record()
		token, _ := rec.ValueByKey("token").(string)
		pin, _ := rec.ValueByKey("pin").(string)
		_, _ = fmt.Fprintf(w, "%s,%s,%s,%v\n",
			rec.Time().UTC().Format(time.RFC3339), token, pin, rec.Value())
	}
	if res.Err() != nil {
		log.Printf("dashboard: export iteration error: %v", res.Err())
	}
}

func clampQueryInt(r *http.Request, key string, def, min, max int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			if n < min {
				return min
			}
			if n > max {
				return max
			}
			return n
		}
	}
	return def
}

// GET /healthz
func (d Deps) handleHealth(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status       string  `json:"status"`
		DatasetRows  int     `json:"dataset_rows"`
		CacheEntries int     `json:"cache_entries"`
		InfluxOK     bool    `json:"influx_ok"`
		LastWriteErr float64 `json:"last_write_error_age_sec"`
	}
	st := status{
		DatasetRows:  d.Matcher.Rows(),
		CacheEntries: d.Cache.Len(),
		InfluxOK:     d.Influx != nil,
		LastWriteErr: d.Telemetry.LastErrorAge().Seconds(),
	}
	if d.Telemetry == nil || d.Telemetry.LastErrorAge() > 30*time.Second {
		st.Status = "ok"
	} else {
		st.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /readyz: 200 once the dataset is loadable and the cache exists.
func (d Deps) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := d.Cache != nil && d.Matcher != nil
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]bool{"ready": ready})
}
