package itinerary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"koatrip-agent/internal/domain"
)

func TestParseDateRange(t *testing.T) {
	require.Equal(t,
		domain.TripDates{Start: "8 Enero", End: "11 Enero"},
		ParseDateRange("8 al 11 de Enero"))

	require.Equal(t,
		domain.TripDates{Start: "3 Marzo", End: "5 Marzo"},
		ParseDateRange("3-5 Marzo"))

	// Unrecognized text lands whole in Start.
	require.Equal(t,
		domain.TripDates{Start: "primavera de 2024"},
		ParseDateRange("primavera de 2024"))
}

func TestDurationFromDates(t *testing.T) {
	require.Equal(t, "3 days", DurationFromDates(domain.TripDates{Start: "2024-01-08", End: "2024-01-11"}))
	require.Equal(t, "1 day", DurationFromDates(domain.TripDates{Start: "2024-01-08", End: "2024-01-09"}))
	require.Empty(t, DurationFromDates(domain.TripDates{Start: "2024-01-08"}))
	require.Empty(t, DurationFromDates(domain.TripDates{Start: "8 Enero", End: "11 Enero"}))
}

func TestDurationFromText(t *testing.T) {
	// Inclusive day count: both endpoints travelled.
	require.Equal(t, "4 days", DurationFromText("8 al 11 de Enero"))
	require.Equal(t, "1 day", DurationFromText("5 al 5 de Mayo"))
	require.Empty(t, DurationFromText("próximo verano"))
}
