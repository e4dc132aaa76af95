package usecase

import (
	"errors"
	"fmt"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/itinerary"
	"koatrip-agent/internal/logger"
)

// FlowState is the per-conversation save-flow state.
type FlowState int

const (
	// StateIdle means no save offer is outstanding.
	StateIdle FlowState = iota
	// StateOfferPending means a parsed itinerary is held awaiting the
	// user's reply to the assistant's save offer.
	StateOfferPending
	// StateSaved means a trip has been saved this session; further offers
	// are not re-prompted.
	StateSaved
)

func (s FlowState) String() string {
	switch s {
	case StateOfferPending:
		return "offer_pending"
	case StateSaved:
		return "saved"
	default:
		return "idle"
	}
}

// TripUpserter is the trip-store surface the flow saves through.
type TripUpserter interface {
	Save(trip domain.Trip) (domain.Trip, bool, error)
}

// TripLinker records the trip back-reference on a chat.
type TripLinker interface {
	LinkTrip(chatID, tripID string) error
}

type pendingOffer struct {
	itinerary *domain.ParsedItinerary
	source    string // raw summary text, persisted as Trip.FullItinerary
}

// SaveFlow is the conversation-level state machine that turns a detected
// save offer plus an affirmative user reply into a trip upsert. Detection
// runs synchronously on each new message; at most one offer is outstanding
// at a time.
type SaveFlow struct {
	parser *itinerary.Parser
	trips  TripUpserter
	chats  TripLinker
	log    *logger.Logger

	state     FlowState
	pending   *pendingOffer
	watermark int
}

// NewSaveFlow creates a SaveFlow in the idle state.
func NewSaveFlow(parser *itinerary.Parser, trips TripUpserter, chats TripLinker, log *logger.Logger) (*SaveFlow, error) {
	if parser == nil {
		return nil, errors.New("usecase: parser must not be nil")
	}
	if trips == nil {
		return nil, errors.New("usecase: trip store must not be nil")
	}
	if chats == nil {
		return nil, errors.New("usecase: chat store must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SaveFlow{parser: parser, trips: trips, chats: chats, log: log}, nil
}

// State returns the current flow state.
func (f *SaveFlow) State() FlowState {
	return f.state
}

// Reset returns the flow to idle, dropping any pending offer and the
// watermark. Called when a conversation is cleared.
func (f *SaveFlow) Reset() {
	f.state = StateIdle
	f.pending = nil
	f.watermark = 0
}

// SetWatermark marks the first len messages of a loaded transcript as
// already processed so historic offers do not re-trigger.
func (f *SaveFlow) SetWatermark(n int) {
	if n >= 0 {
		f.watermark = n
	}
}

// OnAssistantRetracted rolls detection back after an assistant message is
// removed from the transcript, as a retry does. A pending offer always
// came from the trailing assistant message, so it is discarded along with
// it; a completed save is not undone. The watermark is clamped so the
// regenerated message is detected afresh.
func (f *SaveFlow) OnAssistantRetracted(messageCount int) {
	if f.watermark > messageCount {
		f.watermark = messageCount
	}
	if f.state == StateOfferPending {
		f.state = StateIdle
		f.pending = nil
	}
}

// OnAssistantMessage runs offer detection against the transcript after a new
// assistant message. When the message is a save offer and the transcript
// holds a locatable, parsable summary, the flow moves to OfferPending and
// records the message-count watermark. An offer without a usable summary
// leaves the flow idle; there is no silent retry.
func (f *SaveFlow) OnAssistantMessage(messages []domain.ChatMessage) {
	if f.state != StateIdle || len(messages) <= f.watermark {
		return
	}
	last := messages[len(messages)-1]
	if last.Role != domain.RoleAssistant || !itinerary.IsSaveOffer(last.Content) {
		return
	}
	summary := itinerary.FindItinerarySummary(messages)
	if summary == "" {
		f.log.Debug("save offer detected but no summary message found")
		return
	}
	parsed := f.parser.Parse(summary)
	if parsed == nil {
		f.log.Debug("save offer detected but summary did not parse")
		return
	}
	f.pending = &pendingOffer{itinerary: parsed, source: summary}
	f.state = StateOfferPending
	f.watermark = len(messages)
	f.log.Debug("save offer pending", "destination", parsed.Destination)
}

// OnUserMessage resolves a pending offer: a confirmation performs the save,
// any other reply discards the offer. Either way the confirmation window
// closes; a missed confirmation does not linger. Returns the saved trip and
// true when a save happened.
func (f *SaveFlow) OnUserMessage(message, chatID string) (domain.Trip, bool) {
	if f.state != StateOfferPending {
		return domain.Trip{}, false
	}
	pending := f.pending
	f.pending = nil
	f.state = StateIdle

	if !itinerary.IsSaveConfirmation(message) {
		f.log.Debug("save offer declined")
		return domain.Trip{}, false
	}
	trip, err := f.save(pending, chatID)
	if err != nil {
		f.log.Error("trip save failed", "err", err)
		return domain.Trip{}, false
	}
	f.state = StateSaved
	f.log.Info("trip saved", "tripId", trip.ID, "destination", trip.Destination)
	return trip, true
}

// save builds the trip record from the held itinerary and upserts it. When
// the upsert created a new record and a chat id is active, the trip is
// linked back to its chat; re-saves update the trip without re-linking.
func (f *SaveFlow) save(p *pendingOffer, chatID string) (domain.Trip, error) {
	it := p.itinerary

	var dates domain.TripDates
	if it.Dates != nil {
		dates = *it.Dates
	} else {
		dates = itinerary.ParseDateRange(it.DateRange)
	}

	duration := ""
	if it.Dates != nil {
		duration = itinerary.DurationFromDates(*it.Dates)
	}
	if duration == "" {
		duration = itinerary.DurationFromText(it.DateRange)
	}
	if duration == "" {
		duration = it.DateRange
	}

	trip := domain.Trip{
		Destination:   it.Destination,
		Dates:         dates,
		Duration:      duration,
		Transport:     it.Transport,
		Accommodation: it.Accommodation,
		Highlights:    it.Highlights,
		Budget:        it.Budget,
		FullItinerary: p.source,
		ChatID:        chatID,
	}

	saved, created, err := f.trips.Save(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("usecase: save trip: %w", err)
	}
	if created && chatID != "" {
		if err := f.chats.LinkTrip(chatID, saved.ID); err != nil {
			// Recoverable: the trip is still findable by chat id.
			f.log.Warn("trip saved but chat link failed", "err", err, "tripId", saved.ID)
		}
	}
	return saved, nil
}
