// Package logging provides the shared logrus logger. Each package takes a
// named entry so log lines carry the component that produced them.
package logging

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

var base = &logrus.Logger{
	Out: os.Stderr,
	Formatter: &CustomTextFormatter{
		logrus.TextFormatter{
			DisableTimestamp: true,
		},
	},
	Hooks: make(logrus.LevelHooks),
	Level: logrus.WarnLevel,
}

// Logger returns the shared base logger.
func Logger() *logrus.Logger {
	return base
}

// Named returns an entry tagged with the component name.
func Named(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel parses and applies a level name such as "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	base.SetLevel(lvl)
	return nil
}

// CustomTextFormatter prefixes each message with the calling file and line.
type CustomTextFormatter struct {
	logrus.TextFormatter
}

// Format renders a single log entry
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Message = fmt.Sprintf("[%-15s:%03d]%s", path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	} else if _, file, no, ok := runtime.Caller(7); ok {
		entry.Message = fmt.Sprintf("[%-15s:%03d]%s", path.Base(file), no, entry.Message)
	}
	return f.TextFormatter.Format(entry)
}
