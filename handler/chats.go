package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"koatrip-agent/internal/usecase"
)

func (h *Handler) listChats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chats": h.chats.List()})
}

func (h *Handler) getChat(c *gin.Context) {
	chat, found := h.chats.Get(c.Param("id"))
	if !found {
		writeError(c, &usecase.Error{Code: usecase.ErrorNotFound, Reason: "chat_not_found"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// deleteChat removes a saved chat and clears the back-reference on any trip
// that originated from it. The trip itself survives.
func (h *Handler) deleteChat(c *gin.Context) {
	id := c.Param("id")
	if _, found := h.chats.Get(id); !found {
		writeError(c, &usecase.Error{Code: usecase.ErrorNotFound, Reason: "chat_not_found"})
		return
	}
	if err := h.chats.Delete(id); err != nil {
		h.log.Error("chat delete failed", "err", err, "chatId", id)
		writeError(c, err)
		return
	}
	if err := h.trips.ClearChatLink(id); err != nil {
		h.log.Warn("chat deleted but trip link not cleared", "err", err, "chatId", id)
	}
	c.Status(http.StatusNoContent)
}
