package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/store"
)

// GetTimeline stacks all reservations of [from, to) into the lanes of the
// overview.
func (h *Handler) GetTimeline(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	snap, batch, err := h.store.LoadSnapshot(c.Request.Context(), store.LevelMaster, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	group := snap.On(occupancy.MasterResourceID)
	layout := occupancy.StackGroup(group, h.layout.Master)
	layout.ResourceID = occupancy.MasterResourceID

	c.JSON(http.StatusOK, gin.H{
		"from":      from.Format(time.DateOnly),
		"to":        to.Format(time.DateOnly),
		"lanes":     layout.LaneCount(),
		"height":    layout.Height(rowBase, barHeight, barGap),
		"bars":      bars(layout, group, from, h.layout.Master.Inset),
		"skipped":   batch.Skipped(),
		"cancelled": batch.Cancelled,
		"holidays":  h.holidaysBetween(c.Request.Context(), from, to),
	})
}

type dayStatus struct {
	Date           string `json:"date"`
	Used           int    `json:"used"`
	Capacity       int    `json:"capacity"`
	Free           int    `json:"free"`
	IsOverCapacity bool   `json:"isOverCapacity"`
	Status         string `json:"status"`
}

func newDayStatus(r occupancy.DayReport) dayStatus {
	return dayStatus{
		Date:           r.Date.Format(time.DateOnly),
		Used:           r.Used,
		Capacity:       r.Capacity,
		Free:           r.Free,
		IsOverCapacity: r.IsOverCapacity,
		Status:         r.Status(),
	}
}

type roomRow struct {
	Room   occupancy.Resource `json:"room"`
	Lanes  int                `json:"lanes"`
	Height float64            `json:"height"`
	Bars   []bar              `json:"bars"`
	Days   []dayStatus        `json:"days"`
}

// GetRoomPlan returns one row per room with its stacked assignments and a
// status badge per day.
func (h *Handler) GetRoomPlan(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	snap, batch, err := h.store.LoadSnapshot(c.Request.Context(), store.LevelRoom, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	layouts := snap.Lanes(h.layout.Room)
	rows := make([]roomRow, 0, len(snap.Resources()))
	for _, room := range snap.Resources() {
		layout, found := layouts[room.ID]
		if !found {
			layout = occupancy.StackGroup(nil, h.layout.Room)
			layout.ResourceID = room.ID
		}
		reports, err := snap.RangeReport(room.ID, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		days := make([]dayStatus, 0, len(reports))
		for _, r := range reports {
			days = append(days, newDayStatus(r))
		}
		rows = append(rows, roomRow{
			Room:   room,
			Lanes:  layout.LaneCount(),
			Height: layout.Height(rowBase, barHeight, barGap),
			Bars:   bars(layout, snap.On(room.ID), from, h.layout.Room.Inset),
			Days:   days,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"from":     from.Format(time.DateOnly),
		"to":       to.Format(time.DateOnly),
		"rooms":    rows,
		"skipped":  batch.Skipped(),
		"holidays": h.holidaysBetween(c.Request.Context(), from, to),
	})
}

// GetHistogram returns per-category occupancy for every day merged with the
// quotas active that day.
func (h *Handler) GetHistogram(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	snap, batch, err := h.store.LoadSnapshot(c.Request.Context(), store.LevelRoom, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	days, err := snap.Histogram(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":    days,
		"skipped": batch.Skipped(),
	})
}
