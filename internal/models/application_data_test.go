// internal/models/application_data_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidCategory(t *testing.T) {
	require.True(t, IsValidCategory(ApplicationTypeFisherman, "صياد مؤمن عليه"))
	require.True(t, IsValidCategory(ApplicationTypeBoat, "لنش نقل"))
	require.True(t, IsValidCategory(ApplicationTypeOther, "أخرى"))

	require.False(t, IsValidCategory(ApplicationTypeFisherman, "مركب بمحرك")) // category of another type
	require.False(t, IsValidCategory(ApplicationTypeEntry, ""))
	require.False(t, IsValidCategory(ApplicationType("bogus"), "صياد مؤمن عليه"))
}

func TestDecodeApplicationData(t *testing.T) {
	payload, err := DecodeApplicationData(ApplicationTypeFisherman, JSONB{
		"fishing_card_number": "FC-44",
		"marina":              "مرسى التلول",
		"years_of_experience": 12,
	})
	require.NoError(t, err)

	fisherman, ok := payload.(*FishermanData)
	require.True(t, ok)
	require.Equal(t, "FC-44", fisherman.FishingCardNumber)
	require.Equal(t, 12, fisherman.YearsOfExperience)

	payload, err = DecodeApplicationData(ApplicationTypeBoat, JSONB{
		"boat_name":           "النورس",
		"registration_number": "BR-7",
		"marina":              "مرسى التلول",
		"length_meters":       8.5,
	})
	require.NoError(t, err)

	boat, ok := payload.(*BoatData)
	require.True(t, ok)
	require.Equal(t, "النورس", boat.BoatName)
	require.Equal(t, 8.5, boat.LengthMeters)

	payload, err = DecodeApplicationData(ApplicationTypeTrade, JSONB{
		"shop_name":                "أسماك البردويل",
		"commercial_record_number": "CR-1001",
	})
	require.NoError(t, err)

	trade, ok := payload.(*TradeData)
	require.True(t, ok)
	require.Equal(t, "CR-1001", trade.CommercialRecordNumber)
}

func TestDecodeApplicationDataErrors(t *testing.T) {
	_, err := DecodeApplicationData(ApplicationTypeFisherman, nil)
	require.ErrorContains(t, err, "application data is required")

	_, err = DecodeApplicationData(ApplicationType("bogus"), JSONB{"x": 1})
	require.ErrorContains(t, err, "unknown application type")
}

func TestApplicationStatusIsTerminal(t *testing.T) {
	for _, status := range []ApplicationStatus{StatusCompleted, StatusRejected, StatusCancelled} {
		require.True(t, status.IsTerminal(), string(status))
	}
	for _, status := range []ApplicationStatus{StatusReceived, StatusUnderReview, StatusApprovedPaymentPending, StatusPaymentSubmitted, StatusPaymentVerified, StatusReady} {
		require.False(t, status.IsTerminal(), string(status))
	}
}
