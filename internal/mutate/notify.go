package mutate

import "log/slog"

// Notifier receives the outcome of a settled submission. The terminal
// dashboard shows these as a transient status line; the CLI prints them.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes outcomes to the structured log. It is the fallback when
// no UI is attached.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Success(msg string) {
	n.logger().Info(msg)
}

func (n *LogNotifier) Error(msg string) {
	n.logger().Error(msg)
}

func (n *LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}
