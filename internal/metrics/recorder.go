package metrics

// NotificationResult labels the outcome of a session-complete notification.
type NotificationResult string

const (
	NotificationSent     NotificationResult = "sent"
	NotificationFailed   NotificationResult = "failed"
	NotificationDisabled NotificationResult = "disabled"
)

// Recorder receives timer observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncSessionCompleted(mode string)
	IncCommand(command string)
	SetRemainingSeconds(seconds int)
	IncNotification(result NotificationResult)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncSessionCompleted(string)         {}
func (NoopRecorder) IncCommand(string)                  {}
func (NoopRecorder) SetRemainingSeconds(int)            {}
func (NoopRecorder) IncNotification(NotificationResult) {}
