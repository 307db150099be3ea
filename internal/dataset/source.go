package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cropmind/cropmind/internal/model"
)

// Source provides the historical crop/fertilizer record set. The matcher
// loads it lazily on first use and keeps it for the process lifetime.
type Source interface {
	LoadRows() ([]model.HistoricalRecord, error)
}

// CSVSource reads records from a local CSV file with a header row. Column
// order does not matter; headers are matched case-insensitively.
type CSVSource struct {
	Path string
}

// Expected header names. "Soil Type" also accepts "soil_type".
const (
	colTemperature = "temperature"
	colHumidity    = "humidity"
	colMoisture    = "moisture"
	colSoilType    = "soil type"
	colCrop        = "crop"
	colFertilizer  = "fertilizer"
)

func (s CSVSource) LoadRows() ([]model.HistoricalRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // tolerate ragged rows; short rows parse to NaN/empty

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, "_", " ")
		idx[key] = i
	}
	for _, required := range []string{colTemperature, colHumidity, colMoisture, colSoilType, colCrop, colFertilizer} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var rows []model.HistoricalRecord
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		rows = append(rows, model.HistoricalRecord{
			Temperature: numAt(rec, idx[colTemperature]),
			Humidity:    numAt(rec, idx[colHumidity]),
			Moisture:    numAt(rec, idx[colMoisture]),
			SoilType:    strAt(rec, idx[colSoilType]),
			Crop:        strAt(rec, idx[colCrop]),
			Fertilizer:  strAt(rec, idx[colFertilizer]),
		})
	}
	return rows, nil
}

func strAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// numAt parses a numeric cell, NaN when absent or malformed so the row
// silently fails every window comparison.
func numAt(rec []string, i int) float64 {
	v := strAt(rec, i)
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// StaticSource serves a fixed in-memory record set. Used by tests and the
// embedded sample dataset.
type StaticSource []model.HistoricalRecord

func (s StaticSource) LoadRows() ([]model.HistoricalRecord, error) {
	return []model.HistoricalRecord(s), nil
}
