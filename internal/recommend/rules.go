package recommend

import "fmt"

// Rule-based advisory tier. Fixed agronomy thresholds; the boundaries are
// part of the API contract with the dashboard and must not drift.

const (
	moistureCriticalLow = 30.0
	moistureWarningLow  = 40.0
	moistureWarningHigh = 75.0

	tempCriticalLow  = 10.0
	tempWarningLow   = 15.0
	tempWarningHigh  = 30.0
	tempCriticalHigh = 35.0

	humidityCriticalLow  = 30.0
	humidityWarningLow   = 40.0
	humidityWarningHigh  = 75.0
	humidityCriticalHigh = 85.0
)

// Risk points per rule tier.
const (
	riskWarning  = 1
	riskElevated = 2
	riskCritical = 3
)

// ruleBased synthesizes advisory text directly from the observed values.
// Every triggered rule appends a line; a reading can trigger several.
func ruleBased(moisture, temperature, humidity float64) Advisory {
	var lines []string
	risk := 0

	switch {
	case moisture < moistureCriticalLow:
		lines = append(lines, fmt.Sprintf("Critical: soil moisture is very low (%.0f%%). Irrigate immediately.", moisture))
		risk += riskCritical
	case moisture < moistureWarningLow:
		lines = append(lines, fmt.Sprintf("Soil moisture is below optimal (%.0f%%). Schedule irrigation soon.", moisture))
		risk += riskWarning
	case moisture > moistureWarningHigh:
		lines = append(lines, fmt.Sprintf("Soil moisture is high (%.0f%%). Hold irrigation and check drainage.", moisture))
		risk += riskElevated
	}

	switch {
	case temperature > tempCriticalHigh:
		lines = append(lines, fmt.Sprintf("Extreme heat (%.0f°C). Provide shade and irrigate in the evening.", temperature))
		risk += riskCritical
	case temperature > tempWarningHigh:
		lines = append(lines, fmt.Sprintf("High temperature (%.0f°C). Monitor for heat stress.", temperature))
		risk += riskElevated
	case temperature < tempCriticalLow:
		lines = append(lines, fmt.Sprintf("Critical: cold stress risk (%.0f°C). Protect sensitive crops.", temperature))
		risk += riskCritical
	case temperature < tempWarningLow:
		lines = append(lines, fmt.Sprintf("Low temperature (%.0f°C). Growth will slow for warm-season crops.", temperature))
		risk += riskWarning
	}

	switch {
	case humidity > humidityCriticalHigh:
		lines = append(lines, fmt.Sprintf("Critical: humidity is extreme (%.0f%%). High fungal pressure.", humidity))
		risk += riskCritical
	case humidity > humidityWarningHigh:
		lines = append(lines, fmt.Sprintf("High humidity (%.0f%%). Improve air circulation.", humidity))
		risk += riskElevated
	case humidity < humidityCriticalLow:
		lines = append(lines, fmt.Sprintf("Very low humidity (%.0f%%). Evaporation losses will rise.", humidity))
		risk += riskElevated
	case humidity < humidityWarningLow:
		lines = append(lines, fmt.Sprintf("Humidity is below optimal (%.0f%%).", humidity))
		risk += riskWarning
	}

	// Combined-condition escalations, additive and independent of the
	// per-dimension checks above.
	if moisture < 40 && temperature > 30 {
		lines = append(lines, "Critical combination: dry soil under high heat. Irrigate now and mulch to retain moisture.")
		risk += riskCritical
	}
	if humidity > 80 && temperature > 25 {
		lines = append(lines, "Disease risk: warm and humid conditions favour fungal outbreaks. Inspect leaves daily.")
		risk += riskElevated
	}
	if moisture > 70 && humidity > 75 {
		lines = append(lines, "Waterlogging risk: saturated soil with high humidity. Stop irrigation and open drains.")
		risk += riskElevated
	}

	if len(lines) == 0 {
		lines = append(lines, "Conditions are within the optimal range. Maintain the current irrigation schedule.")
	}

	confidence := 0.95
	if risk > 0 {
		confidence = 0.95 - float64(risk)*0.05
		if confidence < 0.7 {
			confidence = 0.7
		}
	}

	return Advisory{
		Recommendations: lines,
		Confidence:      confidence,
		Source:          SourceRuleBased,
	}
}
