package notifier

import (
	"fmt"
	"strings"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/pkg/errors"

	"plantcare-api/internal/models"
	"plantcare-api/pkg/logger"
)

// Sender delivers one rendered message to the outside world.
type Sender interface {
	Send(title, body string) error
}

// ShoutrrrSender fans a message out to every configured service URL
// through a single shoutrrr router.
type ShoutrrrSender struct {
	sender *router.ServiceRouter
}

func NewShoutrrrSender(urls []string) (*ShoutrrrSender, error) {
	if len(urls) == 0 {
		return nil, errors.New("no notification URLs configured")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create shoutrrr sender")
	}
	return &ShoutrrrSender{sender: sender}, nil
}

func (s *ShoutrrrSender) Send(title, body string) error {
	params := stypes.Params{"title": title}
	errs := s.sender.Send(body, &params)

	var failed []string
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err.Error())
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("send failed: %s", strings.Join(failed, "; "))
	}
	return nil
}

// Source is the slice of the scheduler the dispatcher needs.
type Source interface {
	DueUnnotified() ([]models.CareReminder, error)
	MarkNotified(id uint) error
}

// Dispatcher pushes due, unnotified pending reminders and records the
// sent acknowledgment. A failed send leaves the reminder unnotified so
// the next cycle retries it.
type Dispatcher struct {
	source Source
	sender Sender
	l      *logger.Logger
}

func NewDispatcher(source Source, sender Sender, l *logger.Logger) *Dispatcher {
	return &Dispatcher{
		source: source,
		sender: sender,
		l:      l,
	}
}

// DispatchDue sends one message per due reminder. Returns the number
// of reminders acknowledged as sent.
func (d *Dispatcher) DispatchDue() (int, error) {
	due, err := d.source.DueUnnotified()
	if err != nil {
		return 0, errors.Wrap(err, "failed to list due reminders")
	}

	sent := 0
	for i := range due {
		reminder := &due[i]

		if err := d.sender.Send("Plant care due", formatReminder(reminder)); err != nil {
			d.l.Warning("failed to send reminder notification", map[string]any{
				"reminder": reminder.ID,
				"err":      err,
			})
			continue
		}

		if err := d.source.MarkNotified(reminder.ID); err != nil {
			d.l.Error(err, map[string]any{"reminder": reminder.ID})
			continue
		}
		sent++
	}

	if len(due) > 0 {
		d.l.Info("dispatched due reminders", map[string]any{
			"due":  len(due),
			"sent": sent,
		})
	}

	return sent, nil
}

func formatReminder(r *models.CareReminder) string {
	msg := fmt.Sprintf("%s due %s (plant #%d)", r.Type, r.ScheduledDate.Format("2006-01-02"), r.PlantID)
	if r.Notes != "" {
		msg += ": " + r.Notes
	}
	return msg
}
