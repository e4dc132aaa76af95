// Package repository implements the chat and trip stores on top of the blob
// persistence primitive. Each store owns its own records only: the
// cross-references between chats and trips are maintained by the callers.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/logger"
	"koatrip-agent/internal/storage"
)

const (
	chatsBlobName = "koatrip_saved_chats"
	maxTitleLen   = 50
)

var newID = uuid.NewString

// ChatStore is the keyed collection of saved conversations. The whole
// collection is read and rewritten on every mutation.
type ChatStore struct {
	blob storage.Blob
	log  *logger.Logger
	now  func() time.Time
}

// NewChatStore creates a ChatStore over the given blob backend.
func NewChatStore(blob storage.Blob, log *logger.Logger) (*ChatStore, error) {
	if blob == nil {
		return nil, errors.New("repository: blob store must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ChatStore{blob: blob, log: log, now: time.Now}, nil
}

// load reads the full collection. A missing or corrupt blob is treated as an
// empty collection, never an error.
func (s *ChatStore) load() []domain.SavedChat {
	data, ok, err := s.blob.Get(chatsBlobName)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("chat collection unreadable, treating as empty", "err", err)
		}
		return nil
	}
	var chats []domain.SavedChat
	if err := json.Unmarshal(data, &chats); err != nil {
		s.log.Warn("chat collection corrupt, treating as empty", "err", err)
		return nil
	}
	return chats
}

func (s *ChatStore) persist(chats []domain.SavedChat) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("repository: marshal chats: %w", err)
	}
	if err := s.blob.Set(chatsBlobName, data); err != nil {
		return fmt.Errorf("repository: persist chats: %w", err)
	}
	return nil
}

// Save upserts a conversation snapshot and returns the chat id. An empty
// existingID creates a new chat; otherwise the record with that id is
// updated in place (or created, should it have vanished from storage). The
// title is regenerated from the first user message on every save. Saving an
// empty transcript is a no-op returning "".
func (s *ChatStore) Save(messages []domain.ChatMessage, existingID string) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	now := s.now().UTC().Format(time.RFC3339)
	chats := s.load()

	if existingID != "" {
		_, idx, found := lo.FindIndexOf(chats, func(c domain.SavedChat) bool { return c.ID == existingID })
		if found {
			chats[idx].Messages = messages
			chats[idx].Title = generateTitle(messages)
			chats[idx].UpdatedAt = now
		} else {
			chats = prependChat(chats, newChat(existingID, messages, now))
		}
		return existingID, s.persist(chats)
	}

	chat := newChat(newID(), messages, now)
	if err := s.persist(prependChat(chats, chat)); err != nil {
		return "", err
	}
	return chat.ID, nil
}

// Delete removes a chat. Deleting an unknown id is a no-op.
func (s *ChatStore) Delete(id string) error {
	chats := lo.Filter(s.load(), func(c domain.SavedChat, _ int) bool { return c.ID != id })
	return s.persist(chats)
}

// Get returns the chat with the given id.
func (s *ChatStore) Get(id string) (domain.SavedChat, bool) {
	return lo.Find(s.load(), func(c domain.SavedChat) bool { return c.ID == id })
}

// List returns all saved chats, most recently created first.
func (s *ChatStore) List() []domain.SavedChat {
	return s.load()
}

// LinkTrip records the trip back-reference on a chat.
func (s *ChatStore) LinkTrip(chatID, tripID string) error {
	chats := s.load()
	for i := range chats {
		if chats[i].ID == chatID {
			chats[i].TripID = tripID
		}
	}
	return s.persist(chats)
}

// ClearTripLink blanks the back-reference on any chat pointing at the given
// trip. Used when the trip itself is deleted.
func (s *ChatStore) ClearTripLink(tripID string) error {
	chats := s.load()
	for i := range chats {
		if chats[i].TripID == tripID {
			chats[i].TripID = ""
		}
	}
	return s.persist(chats)
}

func newChat(id string, messages []domain.ChatMessage, now string) domain.SavedChat {
	return domain.SavedChat{
		ID:        id,
		Title:     generateTitle(messages),
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func prependChat(chats []domain.SavedChat, chat domain.SavedChat) []domain.SavedChat {
	return append([]domain.SavedChat{chat}, chats...)
}

// generateTitle derives a human-readable title from the first user message:
// first line, capped at 50 characters with an ellipsis when truncated.
func generateTitle(messages []domain.ChatMessage) string {
	first, found := lo.Find(messages, func(m domain.ChatMessage) bool { return m.Role == domain.RoleUser })
	if !found {
		return "New Chat"
	}
	title := first.Content
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen]) + "..."
	}
	title, _, _ = strings.Cut(title, "\n")
	return title
}
