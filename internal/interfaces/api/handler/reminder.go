package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"organizer/internal/application/dto"
	"organizer/internal/application/service"
	"organizer/internal/domain/constant"
	appErrors "organizer/internal/pkg/errors"
	"organizer/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReminderHandler exposes the reminder service over HTTP.
type ReminderHandler struct {
	reminderService service.ReminderService
	loc             *time.Location
	log             logger.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService service.ReminderService, loc *time.Location, log logger.Logger) *ReminderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderHandler{
		reminderService: reminderService,
		loc:             loc,
		log:             log,
	}
}

// notScheduled reports whether err is an expected "did not schedule" outcome
// rather than a broken request or infrastructure failure.
func notScheduled(err error) bool {
	return errors.Is(err, appErrors.ErrPastTime) ||
		errors.Is(err, appErrors.ErrPermissionDenied) ||
		errors.Is(err, appErrors.ErrCategoryDisabled) ||
		errors.Is(err, appErrors.ErrDispatch)
}

func (h *ReminderHandler) scheduleResult(c echo.Context, ids []string, err error) error {
	switch {
	case err == nil && len(ids) > 0:
		return c.JSON(http.StatusOK, dto.ScheduleResponse{Scheduled: true, NotificationIDs: ids})
	case err == nil:
		return c.JSON(http.StatusOK, dto.ScheduleResponse{Scheduled: false})
	case notScheduled(err):
		return c.JSON(http.StatusOK, dto.ScheduleResponse{Scheduled: false, Reason: err.Error()})
	}
	return h.errorResponse(c, err)
}

func (h *ReminderHandler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, appErrors.ErrInvalidRequest), errors.Is(err, appErrors.ErrInvalidDateTime):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, appErrors.ErrReminderNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	}
	h.log.Error("Request failed", err)
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: appErrors.ErrInternalServer.Error()})
}

func (h *ReminderHandler) kindParam(c echo.Context) (constant.EntityKind, error) {
	kind, ok := constant.ParseEntityKind(c.Param("kind"))
	if !ok {
		return "", fmt.Errorf("%w: unknown entity kind %q", appErrors.ErrInvalidRequest, c.Param("kind"))
	}
	return kind, nil
}

// Submit handles POST /reminders.
func (h *ReminderHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var body dto.SubmitReminderRequest
	if err := c.Bind(&body); err != nil {
		return h.errorResponse(c, fmt.Errorf("%w: %v", appErrors.ErrInvalidRequest, err))
	}
	req, err := body.ToEntity(h.loc)
	if err != nil {
		return h.errorResponse(c, err)
	}

	if len(body.Offsets) > 0 {
		ids, err := h.reminderService.SubmitAll(ctx, req, body.OffsetList())
		return h.scheduleResult(c, ids, err)
	}

	id, err := h.reminderService.Submit(ctx, req)
	if id == "" {
		return h.scheduleResult(c, nil, err)
	}
	return h.scheduleResult(c, []string{id}, err)
}

// Cancel handles DELETE /reminders/:kind/:id.
func (h *ReminderHandler) Cancel(c echo.Context) error {
	kind, err := h.kindParam(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	h.reminderService.Cancel(c.Request().Context(), kind, c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// Lookup handles GET /reminders/:kind/:id.
func (h *ReminderHandler) Lookup(c echo.Context) error {
	kind, err := h.kindParam(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	r, err := h.reminderService.Lookup(c.Request().Context(), kind, c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponse(r))
}

// ScheduleFestival handles POST /festivals.
func (h *ReminderHandler) ScheduleFestival(c echo.Context) error {
	var body dto.FestivalRequest
	if err := c.Bind(&body); err != nil {
		return h.errorResponse(c, fmt.Errorf("%w: %v", appErrors.ErrInvalidRequest, err))
	}
	id, err := h.reminderService.ScheduleFestival(c.Request().Context(), body.ToEntity())
	if id == "" {
		return h.scheduleResult(c, nil, err)
	}
	return h.scheduleResult(c, []string{id}, err)
}

// GetCategory handles GET /categories/:kind.
func (h *ReminderHandler) GetCategory(c echo.Context) error {
	kind, err := h.kindParam(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	enabled, err := h.reminderService.CategoryEnabled(c.Request().Context(), kind)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.CategoryResponse{EntityKind: string(kind), Enabled: enabled})
}

// SetCategory handles PUT /categories/:kind.
func (h *ReminderHandler) SetCategory(c echo.Context) error {
	kind, err := h.kindParam(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	var body dto.CategoryRequest
	if err := c.Bind(&body); err != nil {
		return h.errorResponse(c, fmt.Errorf("%w: %v", appErrors.ErrInvalidRequest, err))
	}
	if err := h.reminderService.SetCategoryEnabled(c.Request().Context(), kind, body.Enabled); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.CategoryResponse{EntityKind: string(kind), Enabled: body.Enabled})
}

// Permission handles GET /permission.
func (h *ReminderHandler) Permission(c echo.Context) error {
	p := h.reminderService.Permission(c.Request().Context())
	return c.JSON(http.StatusOK, dto.PermissionResponse{Permission: string(p)})
}

// MinStartTime handles GET /min-start-time.
func (h *ReminderHandler) MinStartTime(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.MinStartTimeResponse{MinStartTime: h.reminderService.MinimumStartTime()})
}

// ValidateStartTime handles POST /start-time/validate.
func (h *ReminderHandler) ValidateStartTime(c echo.Context) error {
	var body dto.StartTimeRequest
	if err := c.Bind(&body); err != nil {
		return h.errorResponse(c, fmt.Errorf("%w: %v", appErrors.ErrInvalidRequest, err))
	}
	start, _, err := dto.ParseAnchor(body.Start, h.loc)
	if err != nil {
		return h.errorResponse(c, err)
	}

	resp := dto.StartTimeResponse{Valid: true, MinStartTime: h.reminderService.MinimumStartTime()}
	if err := h.reminderService.ValidateStartTime(start); err != nil {
		if !errors.Is(err, appErrors.ErrPastTime) {
			return h.errorResponse(c, err)
		}
		resp.Valid, resp.Reason = false, err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
