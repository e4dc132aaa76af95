package itinerary

import (
	"strings"

	"koatrip-agent/internal/domain"
)

// summaryMarker is the literal the assistant is instructed to put in every
// full itinerary summary.
const summaryMarker = "RESUMEN"

// FindItinerarySummary scans the transcript from most recent to oldest and
// returns the content of the first assistant message carrying the summary
// marker, or "" when the transcript has none.
func FindItinerarySummary(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant && strings.Contains(messages[i].Content, summaryMarker) {
			return messages[i].Content
		}
	}
	return ""
}
