package domain

// Roles used across the handler, session and LLM integrations.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is the provider-agnostic chat message shape used by the handler
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SavedChat is a persisted snapshot of one conversation. A live session maps
// to at most one SavedChat; the title is regenerated from the first user
// message on every save.
type SavedChat struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
	TripID    string        `json:"tripId,omitempty"`
}

// StreamFragment is one unit of a streamed assistant reply. A hard stream
// failure surfaces as a single fragment with Err set; channel closure is the
// end-of-stream sentinel.
type StreamFragment struct {
	Text string
	Err  error
}
