package itinerary

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"koatrip-agent/internal/domain"
)

func mustPattern(t *testing.T, expr string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(expr)
	require.NoError(t, err)
	return re
}

const structuredContent = `{
  "destination": "Lisboa",
  "dates": {"start": "2024-01-08", "end": "2024-01-11"},
  "budget": 450,
  "steps": [
    {"title": "Torre de Belém", "type": "culture", "eta": "2024-01-09T10:00:00Z"},
    {"title": "Vuelo MAD-LIS", "type": "transit", "eta": "2024-01-08T08:00:00Z"},
    {"title": "Tranvía 28 por Alfama", "type": "city-sightseeing", "eta": "2024-01-08T16:00:00Z"},
    {"title": "Hotel Baixa", "type": "accommodation", "eta": "2024-01-08T14:00:00Z"},
    {"title": "Vuelo LIS-MAD", "type": "transit", "eta": "2024-01-11T20:00:00Z"},
    {"title": "Hostal Alfama", "type": "accommodation", "eta": "2024-01-10T14:00:00Z"}
  ]
}`

const looseContent = `## RESUMEN DE TU VIAJE A Lisboa (4 días)

Fechas: 8 al 11 de Enero
Transporte: Vuelo directo desde Madrid. Aerolínea TAP.
Alojamiento: Hotel Baixa, centro histórico. Desayuno incluido.
Highlights:
- Tranvía 28 por Alfama
- Torre de Belém
- Mirador de Santa Catarina
- Pastéis de Belém
- Barrio Alto de noche
- Oceanario de Lisboa
Presupuesto total: 450€ - 600€`

func TestParse_StructuredClassifiesSteps(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse(structuredContent)
	require.NotNil(t, it)
	require.Equal(t, "Lisboa", it.Destination)
	require.Equal(t, &domain.TripDates{Start: "2024-01-08", End: "2024-01-11"}, it.Dates)
	require.Equal(t, "450", it.Budget)

	// Earliest-eta step of each reserved type wins.
	require.Equal(t, "Vuelo MAD-LIS", it.Transport)
	require.Equal(t, "Hotel Baixa", it.Accommodation)

	// Highlights exclude transit and accommodation, in eta order.
	require.Equal(t, []string{"Tranvía 28 por Alfama", "Torre de Belém"}, it.Highlights)
}

func TestParse_StructuredTieKeepsOriginalOrder(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse(`{
	  "destination": "Oporto",
	  "steps": [
	    {"title": "Tren A", "type": "transit", "eta": "2024-03-01T09:00:00Z"},
	    {"title": "Tren B", "type": "transit", "eta": "2024-03-01T09:00:00Z"}
	  ]
	}`)
	require.NotNil(t, it)
	require.Equal(t, "Tren A", it.Transport)
}

func TestParse_StructuredSkipsNullSteps(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse(`{"destination": "Roma", "steps": [null, {"title": "Coliseo", "type": "culture", "eta": "2024-05-01T10:00:00Z"}]}`)
	require.NotNil(t, it)
	require.Equal(t, []string{"Coliseo"}, it.Highlights)
}

func TestParse_StructuredEmptyFieldsStillSucceed(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse(`{"steps": []}`)
	require.NotNil(t, it)
	require.Empty(t, it.Destination)
	require.Empty(t, it.Transport)
	require.Empty(t, it.Highlights)
}

func TestParse_StructuredWithoutStepsStaysStructured(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse(`{
	  "destination": "Lisboa",
	  "dates": {"start": "2024-01-08", "end": "2024-01-11"},
	  "budget": "450"
	}`)
	require.NotNil(t, it)
	// The pattern tables must not run over JSON text: no quotes or braces
	// leak into the extracted fields.
	require.Equal(t, "Lisboa", it.Destination)
	require.Equal(t, "450", it.Budget)
	require.Empty(t, it.Transport)
	require.Empty(t, it.Highlights)
}

func TestParse_LooseText(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse(looseContent)
	require.NotNil(t, it)
	require.Equal(t, "Lisboa", it.Destination)
	require.Nil(t, it.Dates)
	require.Equal(t, "8 al 11 de Enero", it.DateRange)
	require.Equal(t, "Vuelo directo desde Madrid", it.Transport)
	require.Equal(t, "Hotel Baixa, centro histórico", it.Accommodation)
	require.Equal(t, "450€ - 600€", it.Budget)

	// Six list entries, capped at five.
	require.Equal(t, []string{
		"Tranvía 28 por Alfama",
		"Torre de Belém",
		"Mirador de Santa Catarina",
		"Pastéis de Belém",
		"Barrio Alto de noche",
	}, it.Highlights)
}

func TestParse_LooseDestinationFallback(t *testing.T) {
	p := NewParser(nil)

	it := p.Parse("Destino: Valencia, España | 3 días\nTransporte: Tren AVE desde Madrid.")
	require.NotNil(t, it)
	require.Equal(t, "Valencia, España", it.Destination)
	require.Equal(t, "Tren AVE desde Madrid", it.Transport)
}

func TestParse_NoDestinationReturnsNil(t *testing.T) {
	p := NewParser(nil)

	require.Nil(t, p.Parse(""))
	require.Nil(t, p.Parse("not json {"))
	require.Nil(t, p.Parse("Hola, ¿en qué puedo ayudarte hoy?"))
}

func TestParse_CustomPatterns(t *testing.T) {
	ps := DefaultPatterns()
	ps.Destination = append(ps.Destination, mustPattern(t, `(?i)Trip\s+to\s+([^(\n]+)`))
	p := NewParser(nil, WithPatterns(ps))

	it := p.Parse("Trip to Kyoto\nHighlights:\n- Fushimi Inari at dawn")
	require.NotNil(t, it)
	require.Equal(t, "Kyoto", it.Destination)
	require.Equal(t, []string{"Fushimi Inari at dawn"}, it.Highlights)
}
