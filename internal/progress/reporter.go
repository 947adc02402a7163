// Package progress decouples the pipeline from its front-ends: the pipeline
// emits human-readable status messages and a consumer (bot reply editor, log
// writer) drains them.
package progress

import "log/slog"

// Reporter consumes status messages emitted while a run progresses.
type Reporter interface {
	Step(message string)
}

// Func adapts a plain function to the Reporter interface.
type Func func(message string)

func (f Func) Step(message string) { f(message) }

// Discard ignores every message.
var Discard Reporter = Func(func(string) {})

// Logger reports every step through a structured logger.
func Logger(logger *slog.Logger) Reporter {
	return Func(func(message string) {
		logger.Info(message)
	})
}
