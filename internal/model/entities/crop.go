package entities

// CropCategory groups crops by agronomic class for the dashboard filters.
type CropCategory string

const (
	CategoryCereal    CropCategory = "Cereal"
	CategoryPulse     CropCategory = "Pulse"
	CategoryFruit     CropCategory = "Fruit"
	CategoryCashCrop  CropCategory = "CashCrop"
	CategoryOilseed   CropCategory = "Oilseed"
	CategoryVegetable CropCategory = "Vegetable"
)

// Range bounds one growing condition. Ideal always lies inside [Min, Max].
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Ideal float64 `json:"ideal"`
}

// PHRange is display-only; pH does not participate in scoring.
type PHRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CropProfile describes the growing-condition envelope of one crop.
// Profiles are loaded once at startup and never mutated.
type CropProfile struct {
	Name               string       `json:"name"`
	Category           CropCategory `json:"category"`
	Moisture           Range        `json:"moisture"`
	Temperature        Range        `json:"temperature"`
	Humidity           Range        `json:"humidity"`
	NPKRatio           string       `json:"npk_ratio"` // "N-P-K", not parsed numerically
	SoilType           string       `json:"soil_type"`
	IrrigationSchedule string       `json:"irrigation_schedule"`
	PH                 PHRange      `json:"ph_range"`
}

// ScoredCrop pairs a profile with the fit score computed for one observation.
type ScoredCrop struct {
	Crop  CropProfile `json:"crop"`
	Score float64     `json:"score"`
}
