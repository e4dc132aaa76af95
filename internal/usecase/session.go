package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/logger"
)

const defaultSaveDelay = 2 * time.Second

// Streamer produces a streamed assistant reply for a prompt transcript.
type Streamer interface {
	StreamChat(ctx context.Context, messages []domain.ChatMessage) (<-chan domain.StreamFragment, error)
}

// ChatSaver is the chat-store surface the session auto-saves through.
type ChatSaver interface {
	Save(messages []domain.ChatMessage, existingID string) (string, error)
}

// Session owns one live conversation: the transcript, the streamed exchange
// with the model, the debounced auto-save of the transcript and the
// save-flow state machine. All message handling is serialized; the only
// concurrent actor is the auto-save timer.
type Session struct {
	streamer  Streamer
	chats     ChatSaver
	flow      *SaveFlow
	log       *logger.Logger
	saveDelay time.Duration

	mu        sync.Mutex
	messages  []domain.ChatMessage
	chatID    string
	inFlight  bool
	saveTimer *time.Timer
	saveGen   int

	// saveMu serializes auto-save runs; a slow write never overlaps the
	// next one.
	saveMu sync.Mutex
}

type SessionOption func(*Session)

// WithSaveDelay overrides the auto-save quiet window (tests use a short
// one).
func WithSaveDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.saveDelay = d
		}
	}
}

// NewSession creates a Session with an empty transcript.
func NewSession(streamer Streamer, chats ChatSaver, flow *SaveFlow, log *logger.Logger, opts ...SessionOption) (*Session, error) {
	if streamer == nil {
		return nil, errors.New("usecase: streamer must not be nil")
	}
	if chats == nil {
		return nil, errors.New("usecase: chat store must not be nil")
	}
	if flow == nil {
		return nil, errors.New("usecase: save flow must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Session{
		streamer:  streamer,
		chats:     chats,
		flow:      flow,
		log:       log,
		saveDelay: defaultSaveDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SendMessage appends the user turn, resolves any pending save offer,
// streams the assistant reply to completion and returns its full text. The
// conversation snapshot is auto-saved after a quiet window.
func (s *Session) SendMessage(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newError(ErrorInvalidInput, "empty_message", nil)
	}

	s.mu.Lock()
	s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	s.flow.OnUserMessage(text, s.chatID)
	s.mu.Unlock()

	return s.exchange(ctx)
}

// RetryMessage drops a failed assistant turn, if any, and re-sends the last
// user message.
func (s *Session) RetryMessage(ctx context.Context) (string, error) {
	s.mu.Lock()
	if n := len(s.messages); n > 0 && s.messages[n-1].Role == domain.RoleAssistant {
		s.messages = s.messages[:n-1]
		s.flow.OnAssistantRetracted(len(s.messages))
	}
	n := len(s.messages)
	if n == 0 || s.messages[n-1].Role != domain.RoleUser {
		s.mu.Unlock()
		return "", newError(ErrorInvalidInput, "nothing_to_retry", nil)
	}
	s.mu.Unlock()

	return s.exchange(ctx)
}

// exchange streams a reply for the current transcript, appends it and runs
// offer detection. Auto-saves are held back while the stream is in flight
// and scheduled once it settles, so a snapshot is never persisted
// mid-exchange; the user turn is persisted even when the stream fails.
func (s *Session) exchange(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.inFlight = true
	transcript := s.snapshot()
	s.mu.Unlock()

	reply, err := s.stream(ctx, transcript)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
		s.flow.OnAssistantMessage(s.snapshot())
	}
	s.mu.Unlock()
	s.scheduleAutosave()

	if err != nil {
		return "", err
	}
	return reply, nil
}

// stream consumes the fragment channel to the sentinel and concatenates the
// reply. A terminal error fragment surfaces as an upstream error.
func (s *Session) stream(ctx context.Context, transcript []domain.ChatMessage) (string, error) {
	fragments, err := s.streamer.StreamChat(ctx, buildPromptMessages(transcript))
	if err != nil {
		return "", newError(ErrorUpstream, "stream_start_failed", err)
	}

	var reply strings.Builder
	var streamErr error
	for frag := range fragments {
		if frag.Err != nil {
			streamErr = frag.Err
			continue
		}
		reply.WriteString(frag.Text)
	}
	if streamErr != nil {
		return "", newError(ErrorUpstream, "stream_interrupted", streamErr)
	}
	return reply.String(), nil
}

// ClearMessages resets the session: transcript, chat id, save flow and any
// pending auto-save.
func (s *Session) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.chatID = ""
	s.saveGen++
	s.flow.Reset()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
}

// LoadMessages replaces the transcript with a previously saved conversation.
// The flow watermark is advanced past the loaded history so historic save
// offers do not re-trigger.
func (s *Session) LoadMessages(history []domain.ChatMessage, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]domain.ChatMessage(nil), history...)
	s.chatID = chatID
	s.saveGen++
	s.flow.Reset()
	s.flow.SetWatermark(len(history))
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ChatID returns the persisted chat id, or "" before the first auto-save.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// FlowState exposes the save-flow state for the UI.
func (s *Session) FlowState() FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.State()
}

func (s *Session) snapshot() []domain.ChatMessage {
	return append([]domain.ChatMessage(nil), s.messages...)
}

// scheduleAutosave supersedes any pending save with a fresh timer; only the
// most recent scheduled save survives.
func (s *Session) scheduleAutosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.saveDelay, s.autosave)
}

// Flush runs any pending auto-save immediately.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.mu.Unlock()
	s.autosave()
}

// autosave persists a transcript snapshot. Runs are serialized under
// saveMu, and the snapshot is taken only once the previous run has
// finished, so a save that created the chat record is visible to the next
// one and a single conversation never produces two records. The generation
// guard keeps a write that straddled a clear or load from claiming the new
// conversation's chat id.
func (s *Session) autosave() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.inFlight {
		// The exchange reschedules once the stream settles.
		s.mu.Unlock()
		return
	}
	messages := s.snapshot()
	id := s.chatID
	gen := s.saveGen
	s.mu.Unlock()

	if len(messages) == 0 {
		return
	}
	savedID, err := s.chats.Save(messages, id)
	if err != nil {
		s.log.Warn("conversation auto-save failed", "err", err)
		return
	}

	s.mu.Lock()
	if s.chatID == "" && s.saveGen == gen {
		s.chatID = savedID
	}
	s.mu.Unlock()
}
