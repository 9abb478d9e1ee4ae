package handler

import (
	"net/http"
	"time"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// Pinger reports backing store connectivity
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and operational endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	sweeper *inventoryapp.ReservationExpirationService
	started time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, sweeper *inventoryapp.ReservationExpirationService) *SystemHandler {
	return &SystemHandler{
		db:      db,
		sweeper: sweeper,
		started: time.Now(),
	}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.POST("/admin/reservations/sweep", h.SweepReservations)
}

// Health reports service and database status
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.started).String(),
	})
}

// SweepReservations triggers a reservation expiry pass outside the schedule
func (h *SystemHandler) SweepReservations(c *gin.Context) {
	if h.sweeper == nil {
		h.NotFound(c, "Reservation sweep is not enabled")
		return
	}

	stats, err := h.sweeper.ExpireReservations(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
