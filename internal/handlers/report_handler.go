package handlers

import (
	"fmt"
	"time"

	"taskboard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves read-only reports.
type ReportHandler struct {
	service *services.UserService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *services.UserService) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes registers the report routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/reports/new-users", h.HandleNewUsers)
}

// HandleNewUsers lists users created within the optional from/to window.
func (h *ReportHandler) HandleNewUsers(c *fiber.Ctx) error {
	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		return respondError(c, err, "Invalid report window")
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		return respondError(c, err, "Invalid report window")
	}

	users, err := h.service.NewUsersReport(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err, "Could not build report")
	}
	return c.JSON(users)
}

const dateLayout = "2006-01-02"

// parseBound accepts RFC 3339 timestamps, zone-less timestamps (read as UTC)
// and plain dates. A plain date used as an upper bound covers the whole day.
func parseBound(raw string, upper bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("%w: '%s' is not an RFC 3339 timestamp or a YYYY-MM-DD date", services.ErrValidation, raw)
}
