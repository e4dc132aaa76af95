package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"koatrip-agent/internal/usecase"
)

func (h *Handler) listTrips(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"trips": h.trips.List()})
}

func (h *Handler) getTrip(c *gin.Context) {
	trip, found := h.trips.Get(c.Param("id"))
	if !found {
		writeError(c, &usecase.Error{Code: usecase.ErrorNotFound, Reason: "trip_not_found"})
		return
	}
	c.JSON(http.StatusOK, trip)
}

// deleteTrip removes a trip and clears the back-reference on its chat. The
// chat itself survives.
func (h *Handler) deleteTrip(c *gin.Context) {
	id := c.Param("id")
	trip, found := h.trips.Get(id)
	if !found {
		writeError(c, &usecase.Error{Code: usecase.ErrorNotFound, Reason: "trip_not_found"})
		return
	}
	if err := h.trips.Delete(id); err != nil {
		h.log.Error("trip delete failed", "err", err, "tripId", id)
		writeError(c, err)
		return
	}
	if err := h.chats.ClearTripLink(trip.ID); err != nil {
		h.log.Warn("trip deleted but chat link not cleared", "err", err, "tripId", id)
	}
	c.Status(http.StatusNoContent)
}
