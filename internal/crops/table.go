package crops

import "github.com/cropmind/cropmind/internal/model"

// FallbackCrop is returned when no crop scores above zero for an
// observation. Wheat tolerates the widest spread of conditions in the
// table, so it is the safe deterministic answer.
const FallbackCrop = "Wheat"

// Table is the static crop reference table. Built once, read-only.
type Table struct {
	profiles []model.CropProfile
	byName   map[string]int
}

// NewTable builds a table over the given profiles.
func NewTable(profiles []model.CropProfile) *Table {
	t := &Table{profiles: profiles, byName: make(map[string]int, len(profiles))}
	for i, p := range profiles {
		t.byName[p.Name] = i
	}
	return t
}

// DefaultTable returns the built-in reference table.
func DefaultTable() *Table { return NewTable(referenceProfiles) }

// Get looks a crop up by exact name.
func (t *Table) Get(name string) (model.CropProfile, bool) {
	i, ok := t.byName[name]
	if !ok {
		return model.CropProfile{}, false
	}
	return t.profiles[i], true
}

// Profiles returns the backing slice. Callers must not mutate it.
func (t *Table) Profiles() []model.CropProfile { return t.profiles }

func (t *Table) Len() int { return len(t.profiles) }

var referenceProfiles = []model.CropProfile{
	{
		Name:     "Rice",
		Category: model.CategoryCereal,
		Moisture: model.Range{Min: 60, Max: 80, Ideal: 70}, Temperature: model.Range{Min: 20, Max: 35, Ideal: 27}, Humidity: model.Range{Min: 60, Max: 85, Ideal: 75},
		NPKRatio: "80-40-40", SoilType: "Clayey", IrrigationSchedule: "Flood irrigation every 4-5 days",
		PH: model.PHRange{Min: 5.5, Max: 6.5},
	},
	{
		Name:     "Wheat",
		Category: model.CategoryCereal,
		Moisture: model.Range{Min: 35, Max: 55, Ideal: 45}, Temperature: model.Range{Min: 10, Max: 25, Ideal: 18}, Humidity: model.Range{Min: 40, Max: 65, Ideal: 55},
		NPKRatio: "120-60-40", SoilType: "Loamy", IrrigationSchedule: "Every 10-12 days",
		PH: model.PHRange{Min: 6.0, Max: 7.0},
	},
	{
		Name:     "Maize",
		Category: model.CategoryCereal,
		Moisture: model.Range{Min: 50, Max: 70, Ideal: 60}, Temperature: model.Range{Min: 18, Max: 32, Ideal: 25}, Humidity: model.Range{Min: 50, Max: 75, Ideal: 65},
		NPKRatio: "120-60-60", SoilType: "Alluvial", IrrigationSchedule: "Every 7-8 days",
		PH: model.PHRange{Min: 5.8, Max: 7.0},
	},
	{
		Name:     "Barley",
		Category: model.CategoryCereal,
		Moisture: model.Range{Min: 30, Max: 50, Ideal: 40}, Temperature: model.Range{Min: 12, Max: 25, Ideal: 16}, Humidity: model.Range{Min: 35, Max: 60, Ideal: 50},
		NPKRatio: "60-30-20", SoilType: "Sandy loam", IrrigationSchedule: "Every 12-15 days",
		PH: model.PHRange{Min: 6.0, Max: 7.5},
	},
	{
		Name:     "Chickpea",
		Category: model.CategoryPulse,
		Moisture: model.Range{Min: 25, Max: 45, Ideal: 35}, Temperature: model.Range{Min: 15, Max: 30, Ideal: 24}, Humidity: model.Range{Min: 30, Max: 55, Ideal: 40},
		NPKRatio: "20-60-20", SoilType: "Sandy loam", IrrigationSchedule: "Every 15-20 days, sparse",
		PH: model.PHRange{Min: 6.0, Max: 7.5},
	},
	{
		Name:     "Lentil",
		Category: model.CategoryPulse,
		Moisture: model.Range{Min: 25, Max: 45, Ideal: 33}, Temperature: model.Range{Min: 12, Max: 28, Ideal: 20}, Humidity: model.Range{Min: 30, Max: 55, Ideal: 42},
		NPKRatio: "20-40-20", SoilType: "Loamy", IrrigationSchedule: "Rainfed, supplement every 20 days",
		PH: model.PHRange{Min: 6.0, Max: 7.0},
	},
	{
		Name:     "Sugarcane",
		Category: model.CategoryCashCrop,
		Moisture: model.Range{Min: 60, Max: 85, Ideal: 75}, Temperature: model.Range{Min: 22, Max: 38, Ideal: 30}, Humidity: model.Range{Min: 60, Max: 85, Ideal: 70},
		NPKRatio: "250-100-100", SoilType: "Alluvial", IrrigationSchedule: "Every 5-7 days",
		PH: model.PHRange{Min: 6.0, Max: 7.5},
	},
	{
		Name:     "Cotton",
		Category: model.CategoryCashCrop,
		Moisture: model.Range{Min: 40, Max: 60, Ideal: 50}, Temperature: model.Range{Min: 22, Max: 35, Ideal: 28}, Humidity: model.Range{Min: 40, Max: 65, Ideal: 55},
		NPKRatio: "100-50-50", SoilType: "Black", IrrigationSchedule: "Every 8-10 days",
		PH: model.PHRange{Min: 5.8, Max: 8.0},
	},
	{
		Name:     "Groundnut",
		Category: model.CategoryOilseed,
		Moisture: model.Range{Min: 40, Max: 60, Ideal: 50}, Temperature: model.Range{Min: 22, Max: 33, Ideal: 27}, Humidity: model.Range{Min: 45, Max: 70, Ideal: 60},
		NPKRatio: "20-40-40", SoilType: "Sandy loam", IrrigationSchedule: "Every 8-10 days",
		PH: model.PHRange{Min: 6.0, Max: 7.0},
	},
	{
		Name:     "Mustard",
		Category: model.CategoryOilseed,
		Moisture: model.Range{Min: 30, Max: 50, Ideal: 38}, Temperature: model.Range{Min: 10, Max: 25, Ideal: 18}, Humidity: model.Range{Min: 30, Max: 55, Ideal: 45},
		NPKRatio: "80-40-40", SoilType: "Loamy", IrrigationSchedule: "Every 12-15 days",
		PH: model.PHRange{Min: 6.0, Max: 7.5},
	},
	{
		Name:     "Mango",
		Category: model.CategoryFruit,
		Moisture: model.Range{Min: 35, Max: 55, Ideal: 45}, Temperature: model.Range{Min: 24, Max: 38, Ideal: 30}, Humidity: model.Range{Min: 45, Max: 70, Ideal: 55},
		NPKRatio: "100-50-100", SoilType: "Alluvial", IrrigationSchedule: "Every 10-15 days (young trees)",
		PH: model.PHRange{Min: 5.5, Max: 7.5},
	},
	{
		Name:     "Banana",
		Category: model.CategoryFruit,
		Moisture: model.Range{Min: 55, Max: 80, Ideal: 68}, Temperature: model.Range{Min: 20, Max: 35, Ideal: 27}, Humidity: model.Range{Min: 60, Max: 85, Ideal: 75},
		NPKRatio: "200-60-300", SoilType: "Loamy", IrrigationSchedule: "Every 3-4 days",
		PH: model.PHRange{Min: 6.0, Max: 7.5},
	},
	{
		Name:     "Tomato",
		Category: model.CategoryVegetable,
		Moisture: model.Range{Min: 45, Max: 70, Ideal: 58}, Temperature: model.Range{Min: 18, Max: 30, Ideal: 24}, Humidity: model.Range{Min: 50, Max: 75, Ideal: 62},
		NPKRatio: "90-60-90", SoilType: "Sandy loam", IrrigationSchedule: "Every 4-6 days",
		PH: model.PHRange{Min: 6.0, Max: 7.0},
	},
	{
		Name:     "Potato",
		Category: model.CategoryVegetable,
		Moisture: model.Range{Min: 50, Max: 75, Ideal: 65}, Temperature: model.Range{Min: 10, Max: 25, Ideal: 18}, Humidity: model.Range{Min: 60, Max: 85, Ideal: 72},
		NPKRatio: "120-80-120", SoilType: "Sandy loam", IrrigationSchedule: "Every 6-8 days",
		PH: model.PHRange{Min: 5.0, Max: 6.5},
	},
}
