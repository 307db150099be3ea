package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCSVSourceHeaderDriven(t *testing.T) {
	// Columns deliberately shuffled; mapping must follow the header.
	csv := "Crop,Moisture,Soil Type,Temperature,Fertilizer,Humidity\n" +
		"Rice,55,Clayey,26,Urea,62\n" +
		"Wheat,not-a-number,Loamy,18,DAP,52\n"
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := CSVSource{Path: path}.LoadRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Crop != "Rice" || rows[0].Temperature != 26 || rows[0].SoilType != "Clayey" {
		t.Fatalf("row 0 mis-mapped: %+v", rows[0])
	}
	if !math.IsNaN(rows[1].Moisture) {
		t.Fatalf("malformed moisture parsed to %.2f, want NaN", rows[1].Moisture)
	}
}

func TestCSVSourceMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte("Crop,Moisture\nRice,55\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (CSVSource{Path: path}).LoadRows(); err == nil {
		t.Fatal("expected error for missing columns")
	}
}
