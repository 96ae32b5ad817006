package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hutplan-backend/config"
	"hutplan-backend/internal/holiday"
	"hutplan-backend/internal/notification"
	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/parse"
	"hutplan-backend/internal/store"
)

// Row geometry of the plan, in pixels.
const (
	rowBase   = 6
	barHeight = 18
	barGap    = 2
)

// HolidayProvider looks up public holidays.
type HolidayProvider interface {
	Between(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error)
	Holidays(ctx context.Context, year int) ([]holiday.Holiday, error)
}

// Notifier receives committed assignment changes.
type Notifier interface {
	Dispatch(ev notification.AssignmentEvent) bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	layout   config.LayoutConfig
	holidays HolidayProvider
	notifier Notifier
}

// NewHandler creates a new API handler. holidays and notifier may be nil.
func NewHandler(s store.Store, webpushOptions *webpush.Options, layout config.LayoutConfig, holidays HolidayProvider, notifier Notifier) *Handler {
	return &Handler{
		store:    s,
		webpush:  webpushOptions,
		layout:   layout,
		holidays: holidays,
		notifier: notifier,
	}
}

// parseRange reads the from and to query parameters. It answers 400 itself
// and returns false when they are missing or invalid.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, to, err := parse.DateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// respondError maps store and core errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, occupancy.ErrUnknownResource):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, occupancy.ErrInvalidRange), errors.Is(err, parse.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bar is a placed interval with its horizontal extent in day units from the
// start of the requested range.
type bar struct {
	occupancy.Placement
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
}

func bars(layout occupancy.LaneLayout, group []occupancy.Interval, origin time.Time, inset float64) []bar {
	placements := layout.Placements(group)
	out := make([]bar, 0, len(placements))
	for _, p := range placements {
		x0, x1 := p.Span(origin, inset)
		out = append(out, bar{Placement: p, X0: x0, X1: x1})
	}
	return out
}

func (h *Handler) holidaysBetween(ctx context.Context, from, to time.Time) []holiday.Holiday {
	if h.holidays == nil {
		return nil
	}
	holidays, err := h.holidays.Between(ctx, from, to)
	if err != nil {
		log.Printf("Warning: holidays unavailable: %v", err)
		return nil
	}
	return holidays
}
