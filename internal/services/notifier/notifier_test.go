package notifier_test

import (
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-api/internal/models"
	"plantcare-api/internal/services/notifier"
	"plantcare-api/pkg/logger"
)

type fakeSource struct {
	due      []models.CareReminder
	notified []uint
	err      error
}

func (f *fakeSource) DueUnnotified() ([]models.CareReminder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.due, nil
}

func (f *fakeSource) MarkNotified(id uint) error {
	f.notified = append(f.notified, id)
	return nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(title, body string) error {
	f.sent = append(f.sent, body)
	return nil
}

// flakySender fails for specific bodies.
type flakySender struct {
	failOn string
	sent   []string
}

func (f *flakySender) Send(_, body string) error {
	if f.failOn != "" && body == f.failOn {
		return errors.New("provider rejected message")
	}
	f.sent = append(f.sent, body)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewZapLogger("test-app", io.Discard)
}

func due(id, plantID uint, notes string) models.CareReminder {
	return models.CareReminder{
		ID:            id,
		PlantID:       plantID,
		Type:          models.ReminderWatering,
		Notes:         notes,
		ScheduledDate: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatchDueSendsAndAcks(t *testing.T) {
	source := &fakeSource{due: []models.CareReminder{
		due(1, 10, "use the rain barrel"),
		due(2, 11, ""),
	}}
	sender := &fakeSender{}
	d := notifier.NewDispatcher(source, sender, testLogger())

	sent, err := d.DispatchDue()
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []uint{1, 2}, source.notified)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "watering due 2026-05-10 (plant #10): use the rain barrel", sender.sent[0])
	assert.Equal(t, "watering due 2026-05-10 (plant #11)", sender.sent[1])
}

func TestDispatchDueFailedSendLeavesUnnotified(t *testing.T) {
	source := &fakeSource{due: []models.CareReminder{
		due(1, 10, ""),
		due(2, 11, "feed the roses"),
	}}
	sender := &flakySender{failOn: "watering due 2026-05-10 (plant #10)"}
	d := notifier.NewDispatcher(source, sender, testLogger())

	sent, err := d.DispatchDue()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []uint{2}, source.notified)
}

func TestDispatchDueSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("db closed")}
	d := notifier.NewDispatcher(source, &fakeSender{}, testLogger())

	_, err := d.DispatchDue()
	assert.Error(t, err)
}

func TestDispatchDueEmpty(t *testing.T) {
	source := &fakeSource{}
	sender := &fakeSender{}
	d := notifier.NewDispatcher(source, sender, testLogger())

	sent, err := d.DispatchDue()
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.sent)
}

func TestNewShoutrrrSenderRequiresURLs(t *testing.T) {
	_, err := notifier.NewShoutrrrSender(nil)
	assert.Error(t, err)
}
