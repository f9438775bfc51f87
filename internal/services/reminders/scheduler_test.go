package reminders_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-api/internal/models"
	"plantcare-api/internal/services/reminders"
	"plantcare-api/internal/storage"
	"plantcare-api/pkg/logger"
)

// fakeStore is an in-memory storage.Store with the same terminal
// transition semantics as the sqlite implementation.
type fakeStore struct {
	gardens   map[uint]*models.Garden
	plants    map[uint]*models.GardenPlant
	reminders map[uint]*models.CareReminder
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		gardens:   map[uint]*models.Garden{},
		plants:    map[uint]*models.GardenPlant{},
		reminders: map[uint]*models.CareReminder{},
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateGarden(g *models.Garden) error {
	g.ID = f.id()
	f.gardens[g.ID] = g
	return nil
}

func (f *fakeStore) GetGarden(id uint) (*models.Garden, error) {
	g, ok := f.gardens[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) CreatePlant(p *models.GardenPlant) error {
	if _, ok := f.gardens[p.GardenID]; !ok {
		return storage.ErrNotFound
	}
	p.ID = f.id()
	f.plants[p.ID] = p
	return nil
}

func (f *fakeStore) GetPlant(id uint) (*models.GardenPlant, error) {
	p, ok := f.plants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GardenForPlant(plantID uint) (*models.Garden, error) {
	p, err := f.GetPlant(plantID)
	if err != nil {
		return nil, err
	}
	return f.GetGarden(p.GardenID)
}

func (f *fakeStore) DeletePlant(id uint) error {
	if _, ok := f.plants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.plants, id)
	for rid, r := range f.reminders {
		if r.PlantID == id {
			delete(f.reminders, rid)
		}
	}
	return nil
}

func (f *fakeStore) CreateReminder(r *models.CareReminder) error {
	r.Normalize()
	r.ID = f.id()
	clone := *r
	f.reminders[r.ID] = &clone
	return nil
}

func (f *fakeStore) GetReminder(id uint) (*models.CareReminder, error) {
	r, ok := f.reminders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (f *fakeStore) PendingWateringForDay(day time.Time) ([]models.CareReminder, error) {
	var out []models.CareReminder
	for _, r := range f.reminders {
		if r.Type == models.ReminderWatering && r.Pending() && sameDay(r.ScheduledDate, day) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) HasPendingOnDay(plantID uint, reminderType string, day time.Time) (bool, error) {
	for _, r := range f.reminders {
		if r.PlantID == plantID && r.Type == reminderType && r.Pending() && sameDay(r.ScheduledDate, day) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CompleteReminder(id uint, at time.Time) error {
	r, ok := f.reminders[id]
	if !ok {
		return storage.ErrNotFound
	}
	if !r.Pending() {
		return storage.ErrAlreadyResolved
	}
	r.Completed = true
	r.CompletedAt = &at
	return nil
}

func (f *fakeStore) SkipReminder(id uint, reason string) error {
	r, ok := f.reminders[id]
	if !ok {
		return storage.ErrNotFound
	}
	if !r.Pending() {
		return storage.ErrAlreadyResolved
	}
	r.Skipped = true
	r.SkipReason = reason
	return nil
}

func (f *fakeStore) DueUnnotified(now time.Time) ([]models.CareReminder, error) {
	var out []models.CareReminder
	for _, r := range f.reminders {
		if r.Pending() && !r.NotificationSent && !r.ScheduledDate.After(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotified(id uint) error {
	r, ok := f.reminders[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.NotificationSent = true
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) all() []models.CareReminder {
	var out []models.CareReminder
	for _, r := range f.reminders {
		out = append(out, *r)
	}
	return out
}

// fakeWeather implements reminders.WeatherSource.
type fakeWeather struct {
	current  *models.CurrentWeather
	forecast []models.DayForecast
	err      error
}

func (f *fakeWeather) Current(_ context.Context, _, _ float64) (*models.CurrentWeather, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.current, nil
}

func (f *fakeWeather) Forecast(_ context.Context, _, _ float64, _ int) ([]models.DayForecast, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.forecast, nil
}

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, store *fakeStore, weather reminders.WeatherSource) *reminders.Scheduler {
	t.Helper()
	l := logger.NewZapLogger("test-app", io.Discard)
	return reminders.NewScheduler(store, weather, l).WithClock(func() time.Time { return testNow })
}

// seedPlant creates a garden (optionally located) with one plant.
func seedPlant(t *testing.T, store *fakeStore, located bool) uint {
	t.Helper()
	garden := &models.Garden{Name: "back yard"}
	if located {
		lat, lon := 52.52, 13.41
		garden.Latitude = &lat
		garden.Longitude = &lon
	}
	require.NoError(t, store.CreateGarden(garden))

	plant := &models.GardenPlant{GardenID: garden.ID, Name: "cherry tomato", Species: "tomato"}
	require.NoError(t, store.CreatePlant(plant))
	return plant.ID
}

func TestCreateNormalizesRecurring(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "")
	require.NoError(t, err)
	assert.True(t, r.Recurring)

	r, err = s.Create(plantID, models.ReminderPruning, testNow, 0, "")
	require.NoError(t, err)
	assert.False(t, r.Recurring)
}

func TestCreateRejectsInvalidType(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	_, err := s.Create(plantID, "misting", testNow, 0, "")
	assert.ErrorIs(t, err, reminders.ErrInvalidType)
}

func TestCreateUnknownPlant(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})

	_, err := s.Create(99, models.ReminderWatering, testNow, 0, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCompleteNonRecurringCreatesNoSuccessor(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderPruning, testNow, 0, "")
	require.NoError(t, err)

	next, err := s.Complete(r.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, store.all(), 1)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, testNow, *got.CompletedAt)
}

func TestCompleteRecurringCreatesOneSuccessor(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "morning water")
	require.NoError(t, err)

	next, err := s.Complete(r.ID)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Equal(t, testNow.AddDate(0, 0, 3), next.ScheduledDate)
	assert.Equal(t, models.ReminderWatering, next.Type)
	assert.Equal(t, 3, next.IntervalDays)
	assert.Equal(t, "morning water", next.Notes)
	assert.True(t, next.Recurring)
	assert.True(t, next.Pending())
	assert.Len(t, store.all(), 2)
}

func TestSkipRecurringCreatesSuccessor(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderFertilizing, testNow, 14, "")
	require.NoError(t, err)

	next, err := s.Skip(r.ID, "soil already fertilized")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, testNow.AddDate(0, 0, 14), next.ScheduledDate)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Skipped)
	assert.Equal(t, "soil already fertilized", got.SkipReason)
	assert.False(t, got.Completed)
}

func TestTerminalTransitionHappensAtMostOnce(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 0, "")
	require.NoError(t, err)

	_, err = s.Complete(r.ID)
	require.NoError(t, err)

	_, err = s.Complete(r.ID)
	assert.ErrorIs(t, err, storage.ErrAlreadyResolved)

	_, err = s.Skip(r.ID, "too late")
	assert.ErrorIs(t, err, storage.ErrAlreadyResolved)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.False(t, got.Skipped)
}

func TestRecurrenceDuplicateSuppressed(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "")
	require.NoError(t, err)

	// A pending reminder already occupies the successor's day.
	_, err = s.Create(plantID, models.ReminderWatering, testNow.AddDate(0, 0, 3), 3, "")
	require.NoError(t, err)

	next, err := s.Complete(r.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, store.all(), 2)
}

func rainyWeather() *fakeWeather {
	return &fakeWeather{
		current: &models.CurrentWeather{Temperature: 14, Precipitation: 0.2, ObservedAt: testNow},
		forecast: []models.DayForecast{
			{Date: testNow.Truncate(24 * time.Hour), TempMin: 9, TempMax: 16, Precipitation: 15.2},
		},
	}
}

func TestAutoSkipRainToday(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, rainyWeather())
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "")
	require.NoError(t, err)

	skipped, err := s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Skipped)
	assert.Contains(t, got.SkipReason, "heavy rain")

	// The recurrence advanced exactly one interval.
	all := store.all()
	require.Len(t, all, 2)
	for _, rem := range all {
		if rem.ID == r.ID {
			continue
		}
		assert.Equal(t, testNow.AddDate(0, 0, 3), rem.ScheduledDate)
		assert.True(t, rem.Pending())
	}
}

func TestAutoSkipIdempotent(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, rainyWeather())
	plantID := seedPlant(t, store, true)

	_, err := s.Create(plantID, models.ReminderWatering, testNow, 0, "")
	require.NoError(t, err)

	skipped, err := s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	skipped, err = s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
}

func TestAutoSkipLeavesUnlocatedGardenPending(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, rainyWeather())
	plantID := seedPlant(t, store, false)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "")
	require.NoError(t, err)

	skipped, err := s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending())
	assert.Len(t, store.all(), 1)
}

func TestAutoSkipLeavesPendingWhenWeatherUnavailable(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{err: context.DeadlineExceeded})
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "")
	require.NoError(t, err)

	skipped, err := s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending())
}

func TestAutoSkipDryWeather(t *testing.T) {
	store := newFakeStore()
	weather := &fakeWeather{
		current: &models.CurrentWeather{Precipitation: 0.1},
		forecast: []models.DayForecast{
			{Date: testNow.Truncate(24 * time.Hour), TempMin: 9, TempMax: 16, Precipitation: 2.0},
		},
	}
	s := newTestScheduler(t, store, weather)
	plantID := seedPlant(t, store, true)

	r, err := s.Create(plantID, models.ReminderWatering, testNow, 3, "")
	require.NoError(t, err)

	skipped, err := s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	got, err := store.GetReminder(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending())
}

func TestAutoSkipIgnoresNonWateringAndOtherDays(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, rainyWeather())
	plantID := seedPlant(t, store, true)

	_, err := s.Create(plantID, models.ReminderPruning, testNow, 0, "")
	require.NoError(t, err)
	_, err = s.Create(plantID, models.ReminderWatering, testNow.AddDate(0, 0, 1), 0, "")
	require.NoError(t, err)

	skipped, err := s.AutoSkip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
}

func TestDueUnnotifiedAndAck(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(t, store, &fakeWeather{})
	plantID := seedPlant(t, store, true)

	overdue, err := s.Create(plantID, models.ReminderWatering, testNow.AddDate(0, 0, -1), 0, "")
	require.NoError(t, err)
	_, err = s.Create(plantID, models.ReminderWatering, testNow.AddDate(0, 0, 5), 0, "")
	require.NoError(t, err)

	due, err := s.DueUnnotified()
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)

	require.NoError(t, s.MarkNotified(overdue.ID))

	due, err = s.DueUnnotified()
	require.NoError(t, err)
	assert.Empty(t, due)
}
