package logger

import (
	"io"
	"log/slog"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// NewWithShipping creates a logger that writes JSON to the given writer and
// additionally ships records to Better Stack when a source token is set.
// With an empty token it behaves exactly like NewWithWriter.
func NewWithShipping(level, betterstackToken string, w io.Writer) *Logger {
	lv := ParseLevel(level)
	local := slog.NewJSONHandler(w, handlerOptions(lv))

	if betterstackToken == "" {
		return &Logger{Logger: slog.New(local)}
	}

	shipping := slogbetterstack.Option{
		Level: lv,
		Token: betterstackToken,
	}.NewBetterstackHandler()

	return &Logger{Logger: slog.New(NewMultiHandler(local, shipping))}
}
