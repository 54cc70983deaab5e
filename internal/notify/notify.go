package notify

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/google/uuid"

	"pomobar/internal/core/model"
	"pomobar/internal/core/timer"
	"pomobar/internal/logfields"
	"pomobar/internal/metrics"
)

// Message is a user-visible notification.
type Message struct {
	Title string
	Body  string
}

// MessageFor returns the notification shown when a session of mode ends.
func MessageFor(ended model.Mode) Message {
	if ended.IsWork() {
		return Message{Title: "Work Session Complete!", Body: "Time for a refreshing break."}
	}
	return Message{Title: "Break Over!", Body: "Ready to focus on the next work session?"}
}

// Sender delivers a message to the desktop.
type Sender interface {
	Send(message Message) error
}

// AppSender sends notifications through the fyne application.
type AppSender struct {
	app fyne.App
}

// NewAppSender wraps app.
func NewAppSender(app fyne.App) *AppSender {
	return &AppSender{app: app}
}

func (sender *AppSender) Send(message Message) error {
	sender.app.SendNotification(fyne.NewNotification(message.Title, message.Body))
	return nil
}

// Dispatcher notifies the user whenever a session counts down to zero.
type Dispatcher struct {
	sender   Sender
	enabled  bool
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewDispatcher returns a dispatcher. A disabled dispatcher only records
// that a notification was suppressed.
func NewDispatcher(sender Sender, enabled bool, recorder metrics.Recorder, logger *slog.Logger) *Dispatcher {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:   sender,
		enabled:  enabled,
		recorder: recorder,
		logger:   logger,
	}
}

// Run consumes engine events until ctx is done or events is closed.
func (dispatcher *Dispatcher) Run(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Type == timer.EventSessionBoundary {
				dispatcher.Notify(event.Ended)
			}
		}
	}
}

// Notify sends the message for ended. Failures are logged and dropped.
func (dispatcher *Dispatcher) Notify(ended model.Mode) {
	if !dispatcher.enabled || dispatcher.sender == nil {
		dispatcher.recorder.IncNotification(metrics.NotificationDisabled)
		return
	}

	id := uuid.NewString()
	message := MessageFor(ended)
	if err := dispatcher.sender.Send(message); err != nil {
		dispatcher.recorder.IncNotification(metrics.NotificationFailed)
		dispatcher.logger.Warn("Notification failed",
			logfields.NotificationID(id),
			logfields.Mode(ended.String()),
			logfields.Error(err))
		return
	}

	dispatcher.recorder.IncNotification(metrics.NotificationSent)
	dispatcher.logger.Debug("Notification sent",
		logfields.NotificationID(id),
		logfields.Mode(ended.String()))
}
