package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessChecker reports whether the activity cache holds data.
type ReadinessChecker interface {
	Ready() bool
	LastFetchedAt() time.Time
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	cache ReadinessChecker
	now   func() time.Time
}

func NewHealthHandler(cache ReadinessChecker) *HealthHandler {
	return &HealthHandler{cache: cache, now: time.Now}
}

// Health always answers 200 while the process serves requests.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Ready answers 503 until the activity cache has been filled once.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.cache == nil || !h.cache.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming"})
		return
	}

	fetched := h.cache.LastFetchedAt()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ready",
		"cacheFetchedAt":  fetched.UTC().Format(time.RFC3339),
		"cacheAgeSeconds": int(h.now().Sub(fetched).Seconds()),
	})
}
