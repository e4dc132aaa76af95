package itinerary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSaveOffer(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    bool
	}{
		{"question with mis viajes", "¿Quieres que guarde este itinerario en Mis Viajes?", true},
		{"gustaria variant", "¿Te gustaría que guarde este itinerario en 'Mis Viajes' para que puedas consultarlo después?", true},
		{"english variant", "Would you like me to save this itinerary to My Trips?", true},
		{"interrogative without question mark", "Dime, quieres que lo guarde en Mis Viajes", true},
		{"past-save statement", "Ya he guardado tu itinerario.", false},
		{"question without save phrasing", "¿Qué destino prefieres?", false},
		{"save phrasing without question", "Puedo guardar este itinerario cuando quieras.", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsSaveOffer(tc.message))
		})
	}
}

func TestIsSaveConfirmation(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    bool
	}{
		{"si", "sí", true},
		{"si with trailing text", "sí, por favor", true},
		{"guardar", "guardar", true},
		{"guardalo", "Guárdalo", true},
		{"ok with padding", "  OK  ", true},
		{"vale", "vale", true},
		{"yes", "yes", true},
		{"negative", "no gracias", false},
		{"affirmative buried in sentence", "creo que sí", false},
		{"ok with trailing text", "ok dale gracias", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsSaveConfirmation(tc.message))
		})
	}
}
