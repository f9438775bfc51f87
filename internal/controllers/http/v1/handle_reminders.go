package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"plantcare-api/internal/models"
	"plantcare-api/internal/services/reminders"
	"plantcare-api/internal/storage"
)

type createReminderRequest struct {
	Type          string `json:"type" example:"watering"`
	ScheduledDate string `json:"scheduled_date" example:"2026-05-10"`
	IntervalDays  int    `json:"interval_days" example:"3"`
	Notes         string `json:"notes"`
}

type skipReminderRequest struct {
	Reason string `json:"reason"`
}

// terminalResponse reports a terminal transition and its successor.
type terminalResponse struct {
	Reminder *models.CareReminder `json:"reminder"`
	Next     *models.CareReminder `json:"next,omitempty"`
}

// CreateReminder godoc
// @Summary Create a care reminder for a plant
// @Description A positive interval_days makes the reminder recurring
// @Tags Reminders
// @Accept json
// @Produce json
// @Param id path integer true "Plant ID"
// @Param reminder body createReminderRequest true "Reminder"
// @Success 201 {object} models.CareReminder
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /plants/{id}/reminders [post]
func (r *routes) handleCreateReminder(c *fiber.Ctx) error {
	plantID, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	var req createReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	scheduled, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid scheduled_date, expected YYYY-MM-DD"})
	}

	reminder, err := r.scheduler.Create(plantID, req.Type, scheduled, req.IntervalDays, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, reminders.ErrInvalidType):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid reminder type"})
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Plant not found"})
		}
		r.l.Error(err, map[string]any{"plant": plantID})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to create reminder"})
	}

	return c.Status(fiber.StatusCreated).JSON(reminder)
}

// CompleteReminder godoc
// @Summary Mark a reminder completed
// @Description Recurring reminders spawn the next occurrence
// @Tags Reminders
// @Produce json
// @Param id path integer true "Reminder ID"
// @Success 200 {object} terminalResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already completed or skipped"
// @Router /reminders/{id}/complete [post]
func (r *routes) handleCompleteReminder(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	next, err := r.scheduler.Complete(id)
	if err != nil {
		return r.terminalError(c, id, err)
	}

	reminder, err := r.store.GetReminder(id)
	if err != nil {
		r.l.Error(err, map[string]any{"reminder": id})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to load reminder"})
	}

	return c.JSON(terminalResponse{Reminder: reminder, Next: next})
}

// SkipReminder godoc
// @Summary Skip a reminder with a reason
// @Description Recurring reminders spawn the next occurrence
// @Tags Reminders
// @Accept json
// @Produce json
// @Param id path integer true "Reminder ID"
// @Param skip body skipReminderRequest true "Skip reason"
// @Success 200 {object} terminalResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already completed or skipped"
// @Router /reminders/{id}/skip [post]
func (r *routes) handleSkipReminder(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	var req skipReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	if req.Reason == "" {
		req.Reason = "skipped by user"
	}

	next, err := r.scheduler.Skip(id, req.Reason)
	if err != nil {
		return r.terminalError(c, id, err)
	}

	reminder, err := r.store.GetReminder(id)
	if err != nil {
		r.l.Error(err, map[string]any{"reminder": id})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to load reminder"})
	}

	return c.JSON(terminalResponse{Reminder: reminder, Next: next})
}

// DueReminders godoc
// @Summary List due reminders not yet notified
// @Description Export surface for external notification dispatchers
// @Tags Reminders
// @Produce json
// @Success 200 {array} models.CareReminder
// @Router /reminders/due [get]
func (r *routes) handleDueReminders(c *fiber.Ctx) error {
	due, err := r.scheduler.DueUnnotified()
	if err != nil {
		r.l.Error(err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to list due reminders"})
	}

	return c.JSON(due)
}

// MarkNotified godoc
// @Summary Acknowledge a reminder notification
// @Description External dispatchers call this to avoid re-sends
// @Tags Reminders
// @Param id path integer true "Reminder ID"
// @Success 204 "Acknowledged"
// @Failure 404 {object} ErrorResponse
// @Router /reminders/{id}/notified [patch]
func (r *routes) handleMarkNotified(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	if err := r.scheduler.MarkNotified(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Reminder not found"})
		}
		r.l.Error(err, map[string]any{"reminder": id})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to acknowledge reminder"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *routes) terminalError(c *fiber.Ctx, id uint, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Reminder not found"})
	case errors.Is(err, storage.ErrAlreadyResolved):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "Reminder already completed or skipped"})
	}
	r.l.Error(err, map[string]any{"reminder": id})
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to update reminder"})
}
