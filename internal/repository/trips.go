package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/logger"
	"koatrip-agent/internal/storage"
)

const tripsBlobName = "koatrip_saved_trips"

// TripStore is the keyed collection of saved trips. Trips originating from a
// chat are upserted by that chat's id so repeated saves within one
// conversation update a single record; trips without a chat id are always
// created fresh.
type TripStore struct {
	blob storage.Blob
	log  *logger.Logger
	now  func() time.Time
}

// NewTripStore creates a TripStore over the given blob backend.
func NewTripStore(blob storage.Blob, log *logger.Logger) (*TripStore, error) {
	if blob == nil {
		return nil, errors.New("repository: blob store must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TripStore{blob: blob, log: log, now: time.Now}, nil
}

func (s *TripStore) load() []domain.Trip {
	data, ok, err := s.blob.Get(tripsBlobName)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("trip collection unreadable, treating as empty", "err", err)
		}
		return nil
	}
	var trips []domain.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		s.log.Warn("trip collection corrupt, treating as empty", "err", err)
		return nil
	}
	return trips
}

func (s *TripStore) persist(trips []domain.Trip) error {
	data, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("repository: marshal trips: %w", err)
	}
	if err := s.blob.Set(tripsBlobName, data); err != nil {
		return fmt.Errorf("repository: persist trips: %w", err)
	}
	return nil
}

// Save upserts a trip. The incoming record's ID and CreatedAt are ignored:
// when a trip for the same ChatID already exists its identity is preserved
// and the remaining fields are overwritten; otherwise a fresh record is
// created. The second return value reports whether a new record was created.
func (s *TripStore) Save(trip domain.Trip) (domain.Trip, bool, error) {
	trips := s.load()

	if trip.ChatID != "" {
		existing, idx, found := lo.FindIndexOf(trips, func(t domain.Trip) bool { return t.ChatID == trip.ChatID })
		if found {
			trip.ID = existing.ID
			trip.CreatedAt = existing.CreatedAt
			trips[idx] = trip
			return trip, false, s.persist(trips)
		}
	}

	trip.ID = newID()
	trip.CreatedAt = s.now().UTC().Format(time.RFC3339)
	trips = append([]domain.Trip{trip}, trips...)
	return trip, true, s.persist(trips)
}

// Delete removes a trip. Deleting an unknown id is a no-op.
func (s *TripStore) Delete(id string) error {
	trips := lo.Filter(s.load(), func(t domain.Trip, _ int) bool { return t.ID != id })
	return s.persist(trips)
}

// Get returns the trip with the given id.
func (s *TripStore) Get(id string) (domain.Trip, bool) {
	return lo.Find(s.load(), func(t domain.Trip) bool { return t.ID == id })
}

// GetByChatID returns the trip originating from the given chat.
func (s *TripStore) GetByChatID(chatID string) (domain.Trip, bool) {
	if chatID == "" {
		return domain.Trip{}, false
	}
	return lo.Find(s.load(), func(t domain.Trip) bool { return t.ChatID == chatID })
}

// List returns all saved trips, most recently created first.
func (s *TripStore) List() []domain.Trip {
	return s.load()
}

// ClearChatLink blanks the chat back-reference on any trip pointing at the
// given chat. Used when the chat itself is deleted; the trip survives.
func (s *TripStore) ClearChatLink(chatID string) error {
	if chatID == "" {
		return nil
	}
	trips := s.load()
	for i := range trips {
		if trips[i].ChatID == chatID {
			trips[i].ChatID = ""
		}
	}
	return s.persist(trips)
}
