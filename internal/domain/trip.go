package domain

// TripDates bounds a trip. Values are ISO dates when they come from a
// structured model reply, or free text recovered from a summary ("8 Enero").
type TripDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Trip is a persisted trip record extracted from a conversation. At most one
// Trip exists per originating chat: saving again for the same ChatID updates
// the record in place, preserving ID and CreatedAt.
type Trip struct {
	ID            string    `json:"id"`
	Destination   string    `json:"destination"`
	Dates         TripDates `json:"dates"`
	Duration      string    `json:"duration,omitempty"`
	Transport     string    `json:"transport"`
	Accommodation string    `json:"accommodation"`
	Highlights    []string  `json:"highlights"`
	Budget        string    `json:"budget"`
	FullItinerary string    `json:"fullItinerary"`
	CreatedAt     string    `json:"createdAt"`
	ChatID        string    `json:"chatId,omitempty"`
}

// ParsedItinerary is the parser's best-effort view of one assistant message.
// Structured replies populate Dates; the loose-text path populates DateRange
// with the raw matched text instead. All other fields default to empty.
type ParsedItinerary struct {
	Destination   string
	Dates         *TripDates
	DateRange     string
	Transport     string
	Accommodation string
	Highlights    []string
	Budget        string
}
