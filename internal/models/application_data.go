// internal/models/application_data.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Category whitelist per application type. Submission fails for any
// (type, category) pair outside this table.
var LicenseCategories = map[ApplicationType][]string{
	ApplicationTypeFisherman: {"صياد مؤمن عليه", "صياد غير مؤمن عليه", "صياد موسمي"},
	ApplicationTypeBoat:      {"مركب بمحرك", "مركب بدون محرك", "لنش نقل"},
	ApplicationTypeVehicle:   {"سيارة نقل أسماك", "سيارة ملاكي", "دراجة نارية"},
	ApplicationTypeTrade:     {"تاجر جملة", "تاجر تجزئة", "محل بيع أسماك"},
	ApplicationTypeEntry:     {"تصريح دخول يومي", "تصريح دخول موسمي"},
	ApplicationTypeOther:     {"أخرى"},
}

func IsValidCategory(appType ApplicationType, category string) bool {
	for _, c := range LicenseCategories[appType] {
		if c == category {
			return true
		}
	}
	return false
}

// Typed payloads replacing the legacy free-form data bag. The stored column
// stays JSONB; the discriminant is Application.ApplicationType.

type FishermanData struct {
	FishingCardNumber string `json:"fishing_card_number" validate:"required"`
	Marina            string `json:"marina" validate:"required"`
	InsuranceNumber   string `json:"insurance_number,omitempty"`
	YearsOfExperience int    `json:"years_of_experience,omitempty" validate:"min=0,max=80"`
}

type BoatData struct {
	BoatName           string  `json:"boat_name" validate:"required"`
	RegistrationNumber string  `json:"registration_number" validate:"required"`
	Marina             string  `json:"marina" validate:"required"`
	EngineHorsepower   int     `json:"engine_horsepower,omitempty" validate:"min=0"`
	LengthMeters       float64 `json:"length_meters,omitempty" validate:"min=0"`
	CrewCount          int     `json:"crew_count,omitempty" validate:"min=0,max=50"`
}

type VehicleData struct {
	PlateNumber   string `json:"plate_number" validate:"required"`
	VehicleModel  string `json:"vehicle_model,omitempty"`
	ChassisNumber string `json:"chassis_number,omitempty"`
}

type TradeData struct {
	ShopName               string `json:"shop_name" validate:"required"`
	CommercialRecordNumber string `json:"commercial_record_number" validate:"required"`
	TaxCardNumber          string `json:"tax_card_number,omitempty"`
	Address                string `json:"address,omitempty"`
}

type EntryData struct {
	Purpose       string `json:"purpose" validate:"required"`
	EntryGate     string `json:"entry_gate,omitempty"`
	CompanionsNum int    `json:"companions_num,omitempty" validate:"min=0,max=20"`
}

type OtherData struct {
	Description string `json:"description" validate:"required"`
}

// DecodeApplicationData selects the payload struct by application type and
// decodes the raw bag into it. Returns the typed value for validation.
func DecodeApplicationData(appType ApplicationType, data JSONB) (interface{}, error) {
	if data == nil {
		return nil, errors.New("application data is required")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode application data: %w", err)
	}

	var payload interface{}
	switch appType {
	case ApplicationTypeFisherman:
		payload = &FishermanData{}
	case ApplicationTypeBoat:
		payload = &BoatData{}
	case ApplicationTypeVehicle:
		payload = &VehicleData{}
	case ApplicationTypeTrade:
		payload = &TradeData{}
	case ApplicationTypeEntry:
		payload = &EntryData{}
	case ApplicationTypeOther:
		payload = &OtherData{}
	default:
		return nil, fmt.Errorf("unknown application type %q", appType)
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("failed to decode application data: %w", err)
	}

	return payload, nil
}
