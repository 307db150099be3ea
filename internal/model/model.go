package model

import (
	"github.com/cropmind/cropmind/internal/model/entities"
	"github.com/cropmind/cropmind/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	CropProfile         = entities.CropProfile
	CropCategory        = entities.CropCategory
	Range               = entities.Range
	PHRange             = entities.PHRange
	ScoredCrop          = entities.ScoredCrop
	HistoricalRecord    = entities.HistoricalRecord
	RecommendationGroup = entities.RecommendationGroup
	SensorSnapshot      = entities.SensorSnapshot
	PinUpdate           = messages.PinUpdate
)

const (
	PinSoilMoisture = entities.PinSoilMoisture
	PinPIR          = entities.PinPIR
	PinFlame        = entities.PinFlame
	PinTemperature  = entities.PinTemperature
	PinHumidity     = entities.PinHumidity
	PinPH           = entities.PinPH
	DefaultPH       = entities.DefaultPH
)

const (
	CategoryCereal    = entities.CategoryCereal
	CategoryPulse     = entities.CategoryPulse
	CategoryFruit     = entities.CategoryFruit
	CategoryCashCrop  = entities.CategoryCashCrop
	CategoryOilseed   = entities.CategoryOilseed
	CategoryVegetable = entities.CategoryVegetable
)

// RequiredPins lists the pins a composed snapshot cannot be built without.
func RequiredPins() []string { return entities.RequiredPins() }
