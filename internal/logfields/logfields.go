package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyMode           = "mode"
	KeyRemaining      = "remaining_seconds"
	KeyCompleted      = "completed_sessions"
	KeyPaused         = "paused"
	KeyCommand        = "command"
	KeyBackend        = "backend"
	KeyPath           = "path"
	KeyNotificationID = "notification_id"
	KeyAddress        = "address"
	KeyError          = "error"
)

func Mode(m string) slog.Attr            { return slog.String(KeyMode, m) }
func Remaining(s int) slog.Attr          { return slog.Int(KeyRemaining, s) }
func Completed(n int) slog.Attr          { return slog.Int(KeyCompleted, n) }
func Paused(p bool) slog.Attr            { return slog.Bool(KeyPaused, p) }
func Command(c string) slog.Attr         { return slog.String(KeyCommand, c) }
func Backend(b string) slog.Attr         { return slog.String(KeyBackend, b) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func NotificationID(id string) slog.Attr { return slog.String(KeyNotificationID, id) }
func Address(a string) slog.Attr         { return slog.String(KeyAddress, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
