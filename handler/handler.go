// Package handler exposes the HTTP surface: the streaming chat proxy, the
// session operations and the trips/chats management endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/logger"
	"koatrip-agent/internal/usecase"
)

// Streamer produces a streamed assistant reply for a transcript.
type Streamer interface {
	StreamChat(ctx context.Context, messages []domain.ChatMessage) (<-chan domain.StreamFragment, error)
}

// Session is the conversation-session surface consumed by the handlers.
type Session interface {
	SendMessage(ctx context.Context, text string) (string, error)
	RetryMessage(ctx context.Context) (string, error)
	ClearMessages()
	LoadMessages(history []domain.ChatMessage, chatID string)
	Messages() []domain.ChatMessage
	ChatID() string
	FlowState() usecase.FlowState
}

// ChatStore is the saved-chats surface consumed by the handlers.
type ChatStore interface {
	List() []domain.SavedChat
	Get(id string) (domain.SavedChat, bool)
	Delete(id string) error
	ClearTripLink(tripID string) error
}

// TripStore is the saved-trips surface consumed by the handlers.
type TripStore interface {
	List() []domain.Trip
	Get(id string) (domain.Trip, bool)
	Delete(id string) error
	ClearChatLink(chatID string) error
}

// Handler wires the HTTP routes to the application services.
type Handler struct {
	streamer Streamer
	session  Session
	chats    ChatStore
	trips    TripStore
	log      *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(streamer Streamer, session Session, chats ChatStore, trips TripStore, log *logger.Logger) (*Handler, error) {
	if streamer == nil {
		return nil, errors.New("handler: streamer must not be nil")
	}
	if session == nil {
		return nil, errors.New("handler: session must not be nil")
	}
	if chats == nil {
		return nil, errors.New("handler: chat store must not be nil")
	}
	if trips == nil {
		return nil, errors.New("handler: trip store must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{streamer: streamer, session: session, chats: chats, trips: trips, log: log}, nil
}

// Register mounts all routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.POST("/chat", h.streamChat)

	api.POST("/session/messages", h.sendMessage)
	api.POST("/session/retry", h.retryMessage)
	api.DELETE("/session/messages", h.clearMessages)
	api.PUT("/session/messages", h.loadMessages)
	api.GET("/session/messages", h.getMessages)

	api.GET("/chats", h.listChats)
	api.GET("/chats/:id", h.getChat)
	api.DELETE("/chats/:id", h.deleteChat)

	api.GET("/trips", h.listTrips)
	api.GET("/trips/:id", h.getTrip)
	api.DELETE("/trips/:id", h.deleteTrip)
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	Reply     string               `json:"reply,omitempty"`
	Messages  []domain.ChatMessage `json:"messages"`
	ChatID    string               `json:"chatId,omitempty"`
	FlowState string               `json:"flowState"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, newInvalidInput("invalid request body"))
		return
	}
	reply, err := h.session.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionState(reply))
}

func (h *Handler) retryMessage(c *gin.Context) {
	reply, err := h.session.RetryMessage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionState(reply))
}

func (h *Handler) clearMessages(c *gin.Context) {
	h.session.ClearMessages()
	c.JSON(http.StatusOK, h.sessionState(""))
}

type loadMessagesRequest struct {
	ChatID string `json:"chatId"`
}

func (h *Handler) loadMessages(c *gin.Context) {
	var req loadMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == "" {
		writeError(c, newInvalidInput("chatId is required"))
		return
	}
	chat, found := h.chats.Get(req.ChatID)
	if !found {
		writeError(c, &usecase.Error{Code: usecase.ErrorNotFound, Reason: "chat_not_found"})
		return
	}
	h.session.LoadMessages(chat.Messages, chat.ID)
	c.JSON(http.StatusOK, h.sessionState(""))
}

func (h *Handler) getMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionState(""))
}

func (h *Handler) sessionState(reply string) sessionResponse {
	return sessionResponse{
		Reply:     reply,
		Messages:  h.session.Messages(),
		ChatID:    h.session.ChatID(),
		FlowState: h.session.FlowState().String(),
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func newInvalidInput(reason string) error {
	return &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: reason}
}

// writeError maps usecase error codes to HTTP statuses; anything untyped is
// an internal error.
func writeError(c *gin.Context, err error) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		c.JSON(statusFor(ucErr.Code), errorResponse{Error: string(ucErr.Code), Reason: ucErr.Reason})
		return
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
