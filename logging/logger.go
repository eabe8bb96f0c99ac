// Package logging provides the minimal logging surface shared by the
// testmux components. Everything accepts the Logger interface so tests can
// capture output and production code can discard it.
package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards all output.
func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages in memory so tests can assert on
// them or dump them after a failure.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append(CapturedOutput(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}

// ConsoleLogger writes timestamped messages to dest with a colorized
// prefix. Used by example programs; library code defaults to NullLogger.
type ConsoleLogger struct {
	Dest   io.Writer
	Prefix string
	lock   sync.Mutex
}

var prefixColor = color.New(color.FgCyan)

func (l *ConsoleLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	prefix := l.Prefix
	if prefix == "" {
		prefix = "testmux"
	}
	fmt.Fprintf(l.Dest, "%s [%s] %s\n",
		prefixColor.Sprint(prefix),
		time.Now().Format(timestampFormat),
		fmt.Sprintf(message, args...),
	)
}
