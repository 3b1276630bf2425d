package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// GetTracking handles GET /api/v1/tracking/:id - the delivery timeline of an
// order or parcel by short code or id.
func (s *Server) GetTracking(c echo.Context, id servers.Identifier) error {
	query, err := queries.NewGetTrackingStatusQuery(id)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Tracking identifier is required")
	}

	ctx := c.Request().Context()
	timeline, err := s.trackingHandler.Handle(ctx, query)
	if err != nil {
		if errors.Is(err, errs.ErrProviderUnavailable) {
			return errorJSON(c, http.StatusServiceUnavailable, "Tracking information is temporarily unavailable")
		}
		code, message := statusFor(err, "Failed to retrieve tracking information")
		if code == http.StatusInternalServerError {
			s.logger.ErrorContext(ctx, "tracking lookup failed", "identifier", query.Identifier(), "error", err)
		}
		return errorJSON(c, code, message)
	}

	return c.JSON(http.StatusOK, trackingResponse(timeline))
}

func trackingResponse(t services.Timeline) servers.TrackingResponse {
	resp := servers.TrackingResponse{
		Status:         t.Status,
		TrackingStatus: t.TrackingStatus,
		Milestones:     make([]servers.MilestoneResponse, 0, len(t.Milestones)),
		LastUpdated:    t.LastUpdated,
	}
	for _, m := range t.Milestones {
		resp.Milestones = append(resp.Milestones, servers.MilestoneResponse{
			Title:       m.Title,
			Description: m.Description,
			State:       string(m.State),
			Timestamp:   m.Timestamp,
		})
	}
	return resp
}
