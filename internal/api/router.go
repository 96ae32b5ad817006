package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hutplan-backend/internal/mw"
)

// RouterOptions configures the middleware around the handlers.
type RouterOptions struct {
	RateLimit rate.Limit
	RateBurst int
	Cache     mw.ResponseStore
	CacheTTL  time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(10)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.Cache == nil {
		opts.Cache = mw.NewMemoryStore(5 * time.Minute)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	rateLimiter := mw.RateLimiter(opts.RateLimit, opts.RateBurst)
	caching := mw.Cache(opts.Cache, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Occupancy views are cached until the next successful write.
		views := api.Group("", caching)
		views.GET("/rooms", handler.GetRooms)
		views.GET("/rooms/:room_id/occupancy", handler.GetRoomOccupancy)
		views.GET("/timeline", handler.GetTimeline)
		views.GET("/roomplan", handler.GetRoomPlan)
		views.GET("/histogram", handler.GetHistogram)
		views.GET("/holidays", handler.GetHolidays)
		views.PUT("/assignments", handler.PutAssignment)
		views.DELETE("/assignments/:id", handler.DeleteAssignment)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
