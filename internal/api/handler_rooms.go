package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/store"
)

// GetRooms lists all rooms in display order.
func (h *Handler) GetRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]occupancy.Resource, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, store.ResourceFromRoom(r))
	}
	c.JSON(http.StatusOK, out)
}

// GetRoomOccupancy returns the day-by-day report of one room.
func (h *Handler) GetRoomOccupancy(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	roomID := c.Param("room_id")

	snap, batch, err := h.store.LoadSnapshot(c.Request.Context(), store.LevelRoom, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	room, found := snap.Resource(roomID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	days, err := snap.RangeReport(roomID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":    room,
		"days":    days,
		"skipped": batch.Skipped(),
	})
}
