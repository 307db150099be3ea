package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Weather is the condition summary served to the dashboard, with a daily
// reference-evapotranspiration estimate for the irrigation hint.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
	RainMM      float64 `json:"rain_mm"`
	ET0MM       float64 `json:"et0_mm"`
	FetchedAt   string  `json:"fetched_at"`
}

const weatherCacheTTL = 10 * time.Minute

type owmCurrent struct {
	Temp      float64 `json:"temp"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"wind_speed"`
	Weather   []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type owmDaily struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temp"`
	Rain float64 `json:"rain"`
}

type owmResp struct {
	Current owmCurrent `json:"current"`
	Daily   []owmDaily `json:"daily"`
}

// WeatherClient fetches current conditions from the OpenWeather one-call
// API, behind a circuit breaker and a short per-location cache.
type WeatherClient struct {
	apiKey string
	http   *http.Client
	cb     *gobreaker.CircuitBreaker

	mu    sync.Mutex
	cache map[string]cachedWeather
}

type cachedWeather struct {
	w  Weather
	at time.Time
}

func NewWeatherClient(apiKey string, timeout time.Duration) *WeatherClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "openweather",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
		cache: make(map[string]cachedWeather),
	}
}

// Current returns conditions for a coordinate, serving the cached answer
// while it is fresh.
func (c *WeatherClient) Current(ctx context.Context, lat, lon float64) (Weather, error) {
	if c.apiKey == "" {
		return Weather{}, fmt.Errorf("weather: missing api key")
	}

	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	c.mu.Lock()
	if hit, ok := c.cache[key]; ok && time.Since(hit.at) < weatherCacheTTL {
		c.mu.Unlock()
		return hit.w, nil
	}
	c.mu.Unlock()

	res, err := c.cb.Execute(func() (any, error) {
		return c.fetch(ctx, lat, lon)
	})
	if err != nil {
		return Weather{}, err
	}
	w := res.(Weather)

	c.mu.Lock()
	c.cache[key] = cachedWeather{w: w, at: time.Now()}
	c.mu.Unlock()
	return w, nil
}

func (c *WeatherClient) fetch(ctx context.Context, lat, lon float64) (Weather, error) {
	url := fmt.Sprintf(
		"https://api.openweathermap.org/data/3.0/onecall?lat=%f&lon=%f&exclude=minutely,hourly,alerts&units=metric&appid=%s",
		lat, lon, c.apiKey)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return Weather{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Weather{}, fmt.Errorf("weather: owm status %d: %s", resp.StatusCode, string(b))
	}

	var out owmResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Weather{}, err
	}

	w := Weather{
		Temperature: out.Current.Temp,
		Humidity:    out.Current.Humidity,
		WindSpeed:   out.Current.WindSpeed,
		FetchedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(out.Current.Weather) > 0 {
		w.Description = out.Current.Weather[0].Description
	}
	if today, ok := nearestDay(out.Daily, time.Now().UTC()); ok {
		w.RainMM = today.Rain
		// Simplified Ra constant to land on mm/day.
		w.ET0MM = etoHargreaves(today.Temp.Min, today.Temp.Max, 0.408)
	}
	return w, nil
}

// nearestDay picks the daily entry closest to the target date.
func nearestDay(daily []owmDaily, target time.Time) (owmDaily, bool) {
	if len(daily) == 0 {
		return owmDaily{}, false
	}
	day := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	chosen := daily[0]
	minDelta := time.Duration(1<<63 - 1)
	for _, d := range daily {
		t := time.Unix(d.Dt, 0).UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		delta := day.Sub(date)
		if delta < 0 {
			delta = -delta
		}
		if delta < minDelta {
			minDelta = delta
			chosen = d
		}
	}
	return chosen, true
}

// Hargreaves, simplified.
func etoHargreaves(tmin, tmax, ra float64) float64 {
	tmean := (tmin + tmax) / 2.0
	return 0.0023 * (tmean + 17.8) * math.Sqrt(math.Max(tmax-tmin, 0)) * ra
}
