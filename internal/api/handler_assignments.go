package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hutplan-backend/internal/model"
	"hutplan-backend/internal/notification"
	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/parse"
	"hutplan-backend/internal/store"
)

type putAssignmentRequest struct {
	ID            int64  `json:"id"`
	ReservationID int64  `json:"reservationId" binding:"required_without=ID"`
	RoomID        int64  `json:"roomId" binding:"required"`
	Arrival       string `json:"arrival" binding:"required"`
	Departure     string `json:"departure" binding:"required"`
	Guests        int    `json:"guests" binding:"min=0"`
	Note          string `json:"note" binding:"max=512"`
}

type assignmentView struct {
	ID            int64  `json:"id"`
	ReservationID int64  `json:"reservationId"`
	RoomID        int64  `json:"roomId"`
	Arrival       string `json:"arrival"`
	Departure     string `json:"departure"`
	Guests        int    `json:"guests"`
	Note          string `json:"note,omitempty"`
}

func newAssignmentView(a model.RoomAssignment) assignmentView {
	return assignmentView{
		ID:            a.ID,
		ReservationID: a.ReservationID,
		RoomID:        a.RoomID,
		Arrival:       a.Arrival.Format(time.DateOnly),
		Departure:     a.Departure.Format(time.DateOnly),
		Guests:        a.Guests,
		Note:          a.Note,
	}
}

// PutAssignment validates a placement against the room's capacity and
// commits it. A placement that would overbook any day is rejected with 400
// naming the first conflicting day.
func (h *Handler) PutAssignment(c *gin.Context) {
	var req putAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	arrival, departure, err := parse.DateRange(req.Arrival, req.Departure)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.AssignRoom(c.Request.Context(), store.AssignmentRequest{
		ID:            req.ID,
		ReservationID: req.ReservationID,
		RoomID:        req.RoomID,
		Arrival:       arrival,
		Departure:     departure,
		Guests:        req.Guests,
		Note:          req.Note,
	})
	if errors.Is(err, store.ErrCapacityExceeded) {
		body := gin.H{
			"error":        string(occupancy.ReasonCapacityExceeded),
			"maxOccupancy": result.Validation.MaxOccupancyObserved,
		}
		if result.Validation.ConflictDate != nil {
			body["conflictDate"] = result.Validation.ConflictDate.Format(time.DateOnly)
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.notify(notification.KindAssigned, result.Assignment, result.Room.Name)
	c.JSON(http.StatusOK, gin.H{
		"assignment": newAssignmentView(result.Assignment),
		"validation": result.Validation,
	})
}

// DeleteAssignment removes an assignment.
func (h *Handler) DeleteAssignment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}

	deleted, err := h.store.DeleteAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notify(notification.KindDeleted, deleted, deleted.Room.Name)
	c.Status(http.StatusNoContent)
}

func (h *Handler) notify(kind string, a model.RoomAssignment, roomName string) {
	if h.notifier == nil {
		return
	}
	h.notifier.Dispatch(notification.AssignmentEvent{
		Kind:          kind,
		AssignmentID:  a.ID,
		ReservationID: a.ReservationID,
		RoomID:        a.RoomID,
		RoomName:      roomName,
		Arrival:       a.Arrival,
		Departure:     a.Departure,
		Guests:        a.Guests,
	})
}
