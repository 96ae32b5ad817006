package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetHolidays returns the public holidays of ?year (default: current year).
func (h *Handler) GetHolidays(c *gin.Context) {
	if h.holidays == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "holidays are not configured"})
		return
	}

	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1900 || y > 2200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = y
	}

	holidays, err := h.holidays.Holidays(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, holidays)
}
