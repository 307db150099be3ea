package entities

// HistoricalRecord is one row of the crop/fertilizer reference dataset.
// Numeric fields hold NaN when the source column was not parseable; such
// rows never satisfy a window comparison and are skipped by distance
// scoring.
type HistoricalRecord struct {
	Temperature float64
	Humidity    float64
	Moisture    float64
	SoilType    string
	Crop        string
	Fertilizer  string
}

// RecommendationGroup collapses the records sharing one
// (crop, fertilizer, soil type) triple.
type RecommendationGroup struct {
	Crop       string  `json:"crop"`
	Fertilizer string  `json:"fertilizer"`
	SoilType   string  `json:"soilType"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"matchCount"`
}
