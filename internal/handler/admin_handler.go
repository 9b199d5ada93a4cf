package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stagehand-bookings/service-booking/internal/application"
	"github.com/stagehand-bookings/service-booking/pkg/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes behind guard.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, guard gin.HandlerFunc) {
	admin := r.Group("/api/v1/admin")
	admin.Use(guardOrDeny(guard))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/notifications/pending", h.PendingNotifications)
	}
}

// ListBookings handles GET /api/v1/admin/bookings?status=pending,confirmed.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	var statuses []string
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	result, err := h.service.ListBookings(c.Request.Context(), statuses, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// PendingNotifications handles GET /api/v1/admin/notifications/pending.
func (h *AdminBookingHandler) PendingNotifications(c *gin.Context) {
	count, err := h.service.PendingCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, count)
}
