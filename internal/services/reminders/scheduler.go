package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"plantcare-api/internal/models"
	"plantcare-api/internal/services/rules"
	"plantcare-api/internal/storage"
	"plantcare-api/pkg/logger"
)

var ErrInvalidType = errors.New("invalid reminder type")

// WeatherSource is the slice of the weather service the sweep needs.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error)
	Forecast(ctx context.Context, lat, lon float64, days int) ([]models.DayForecast, error)
}

// Scheduler owns the CareReminder lifecycle: creation, the two
// terminal transitions, recurrence, and the weather-aware auto-skip
// sweep. Transition atomicity lives in the store's guarded updates;
// the scheduler never double-processes an occurrence.
type Scheduler struct {
	store   storage.Store
	weather WeatherSource
	l       *logger.Logger
	now     func() time.Time
}

func NewScheduler(store storage.Store, weather WeatherSource, l *logger.Logger) *Scheduler {
	return &Scheduler{
		store:   store,
		weather: weather,
		l:       l,
		now:     time.Now,
	}
}

// WithClock overrides the scheduler's clock.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Create validates and persists a new pending reminder. The recurring
// flag is derived from the interval: positive interval means recurring.
func (s *Scheduler) Create(plantID uint, reminderType string, scheduled time.Time, intervalDays int, notes string) (*models.CareReminder, error) {
	if !models.ValidReminderType(reminderType) {
		return nil, errors.Wrap(ErrInvalidType, reminderType)
	}

	if _, err := s.store.GetPlant(plantID); err != nil {
		return nil, err
	}

	reminder := &models.CareReminder{
		PlantID:       plantID,
		Type:          reminderType,
		Notes:         notes,
		ScheduledDate: scheduled,
		IntervalDays:  intervalDays,
	}
	if err := s.store.CreateReminder(reminder); err != nil {
		return nil, err
	}

	s.l.Info("reminder created", map[string]any{
		"id":       reminder.ID,
		"plant":    plantID,
		"type":     reminderType,
		"interval": reminder.IntervalDays,
	})

	return reminder, nil
}

// Complete transitions a pending reminder to completed and, when
// recurring, creates the successor. Returns the successor (nil for
// non-recurring reminders).
func (s *Scheduler) Complete(id uint) (*models.CareReminder, error) {
	reminder, err := s.store.GetReminder(id)
	if err != nil {
		return nil, err
	}

	if err := s.store.CompleteReminder(id, s.now()); err != nil {
		return nil, err
	}

	s.l.Info("reminder completed", map[string]any{"id": id})

	return s.recur(reminder)
}

// Skip transitions a pending reminder to skipped with the given reason
// and, when recurring, creates the successor.
func (s *Scheduler) Skip(id uint, reason string) (*models.CareReminder, error) {
	reminder, err := s.store.GetReminder(id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SkipReminder(id, reason); err != nil {
		return nil, err
	}

	s.l.Info("reminder skipped", map[string]any{"id": id, "reason": reason})

	return s.recur(reminder)
}

// recur creates the next occurrence of a recurring reminder after a
// terminal transition. A pending reminder for the same plant, type and
// day suppresses the insert so recurrence cannot stack duplicates.
func (s *Scheduler) recur(old *models.CareReminder) (*models.CareReminder, error) {
	if !old.Recurring || old.IntervalDays <= 0 {
		return nil, nil
	}

	next := old.NextOccurrence()

	exists, err := s.store.HasPendingOnDay(next.PlantID, next.Type, next.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if exists {
		s.l.Warning("recurrence suppressed, pending duplicate exists", map[string]any{
			"plant": next.PlantID,
			"type":  next.Type,
			"date":  next.ScheduledDate,
		})
		return nil, nil
	}

	if err := s.store.CreateReminder(&next); err != nil {
		return nil, err
	}

	s.l.Info("recurring reminder scheduled", map[string]any{
		"id":        next.ID,
		"plant":     next.PlantID,
		"scheduled": next.ScheduledDate,
	})

	return &next, nil
}

// AutoSkip is the periodic sweep: every pending watering reminder
// scheduled today is checked against its garden's weather, and skipped
// when heavy rain makes watering pointless. A reminder is never
// auto-skipped without positive weather confirmation: a garden with no
// location or unavailable weather data leaves it pending. Returns the
// number of reminders skipped; safe to re-run, the first run's
// transitions make later runs no-ops.
func (s *Scheduler) AutoSkip(ctx context.Context) (int, error) {
	runID := uuid.NewString()
	today := s.now()

	pending, err := s.store.PendingWateringForDay(today)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list pending watering reminders")
	}

	s.l.Info("auto-skip sweep started", map[string]any{
		"run":        runID,
		"candidates": len(pending),
	})

	skipped := 0
	for i := range pending {
		reminder := &pending[i]

		garden, err := s.store.GardenForPlant(reminder.PlantID)
		if err != nil {
			s.l.Warning("sweep: cannot resolve garden", map[string]any{
				"run": runID, "reminder": reminder.ID, "err": err,
			})
			continue
		}
		if !garden.HasLocation() {
			s.l.Debug("sweep: garden has no location, leaving pending", map[string]any{
				"run": runID, "reminder": reminder.ID, "garden": garden.ID,
			})
			continue
		}

		lat, lon := *garden.Latitude, *garden.Longitude

		current, err := s.weather.Current(ctx, lat, lon)
		if err != nil {
			current = nil
		}
		var todayForecast *models.DayForecast
		if forecast, err := s.weather.Forecast(ctx, lat, lon, 1); err == nil {
			todayForecast = models.ForecastForDate(forecast, today)
		}

		if current == nil && todayForecast == nil {
			s.l.Warning("sweep: weather unavailable, leaving pending", map[string]any{
				"run": runID, "reminder": reminder.ID, "garden": garden.ID,
			})
			continue
		}

		skip, reason := rules.ShouldSkipWatering(current, todayForecast)
		if !skip {
			continue
		}

		if _, err := s.Skip(reminder.ID, reason); err != nil {
			if errors.Is(err, storage.ErrAlreadyResolved) {
				continue
			}
			s.l.Error(err, map[string]any{"run": runID, "reminder": reminder.ID})
			continue
		}
		skipped++
	}

	s.l.Info("auto-skip sweep finished", map[string]any{
		"run":     runID,
		"skipped": skipped,
	})

	return skipped, nil
}

// DueUnnotified lists pending reminders that are due and have not been
// pushed yet; the notification dispatcher drains this.
func (s *Scheduler) DueUnnotified() ([]models.CareReminder, error) {
	return s.store.DueUnnotified(s.now())
}

// MarkNotified records a delivery acknowledgment so the reminder is
// not pushed again.
func (s *Scheduler) MarkNotified(id uint) error {
	return s.store.MarkNotified(id)
}
