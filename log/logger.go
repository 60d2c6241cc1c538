// Package log writes leveled log lines with the wall clock time and the
// elapsed run time. The level is the bracketed prefix of the message,
// e.g. log.Printf("[warn] skipping %d", id).
package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	LDebug    = Level("debug")
	LProgress = Level("progress")
	LStep     = Level("step")
	LInfo     = Level("info")
	LWarn     = Level("warn")
	LError    = Level("error")
	LFatal    = Level("fatal")
)

// levels in ascending order
var levels = []Level{LDebug, LProgress, LStep, LInfo, LWarn, LError, LFatal}

func rank(lvl Level) int {
	for i, l := range levels {
		if l == lvl {
			return i
		}
	}
	return -1
}

// ParseLevel returns the level for a -loglevel option.
func ParseLevel(s string) (Level, error) {
	lvl := Level(strings.ToLower(strings.TrimSpace(s)))
	if rank(lvl) < 0 {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

var (
	std    *log.Logger
	filter *levelWriter
)

func init() {
	filter = &levelWriter{
		start: time.Now(),
		out:   os.Stderr,
		min:   rank(LProgress),
	}
	std = log.New(filter, "", 0)
}

// levelWriter drops lines below min. Lines without a known level are
// always written.
type levelWriter struct {
	mu    sync.Mutex
	start time.Time
	out   io.Writer
	min   int
}

func lineLevel(line []byte) Level {
	if len(line) == 0 || line[0] != '[' {
		return ""
	}
	end := bytes.IndexByte(line, ']')
	if end < 0 {
		return ""
	}
	return Level(line[1:end])
}

func (w *levelWriter) enabled(line []byte) bool {
	r := rank(lineLevel(line))
	return r < 0 || r >= w.min
}

// Write is called by log.Logger with exactly one line.
func (w *levelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled(p) {
		return len(p), nil
	}
	now := time.Now()
	var b bytes.Buffer
	b.WriteString(now.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(elapsed(now.Sub(w.start)))
	b.WriteByte(' ')
	b.Write(p)
	if _, err := w.out.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// elapsed formats d as h:mm:ss.
func elapsed(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
}

// SetMinLevel drops all lines below lvl.
func SetMinLevel(lvl Level) {
	r := rank(lvl)
	if r < 0 {
		return
	}
	filter.mu.Lock()
	filter.min = r
	filter.mu.Unlock()
}

// SetOutput redirects all log output, e.g. to silence tests.
func SetOutput(w io.Writer) {
	filter.mu.Lock()
	filter.out = w
	filter.mu.Unlock()
}

func Println(v ...interface{}) {
	std.Println(v...)
}

func Printf(format string, v ...interface{}) {
	std.Printf(format, v...)
}

func Fatalf(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}

// Step logs the start of name and returns a func that logs its
// duration.
func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start).Round(time.Millisecond))
	}
}
