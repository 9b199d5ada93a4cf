package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stagehand-bookings/service-booking/internal/application"
	"github.com/stagehand-bookings/service-booking/pkg/response"
)

// TrackingHandler serves the public booking tracking page.
type TrackingHandler struct {
	service *application.BookingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(service *application.BookingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// RegisterRoutes registers the tracking route.
func (h *TrackingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/tracking", h.TrackBooking)
}

type trackingRequest struct {
	Reference string `json:"reference"`
	Phone     string `json:"phone"`
}

// TrackBooking handles POST /api/v1/tracking. The phone number travels in the
// body so it stays out of access logs.
func (h *TrackingHandler) TrackBooking(c *gin.Context) {
	var req trackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid tracking request")
		return
	}

	result, err := h.service.TrackBooking(c.Request.Context(), req.Reference, req.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
