// Package logger writes leveled progress lines for bankinfo commands.
// Debug, Info and Warn print only in verbose mode; Error always prints.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput replaces the destination writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func Debug(format string, args ...any) {
	logf(false, "DEBUG", format, args...)
}

func Info(format string, args ...any) {
	logf(false, "INFO", format, args...)
}

func Warn(format string, args ...any) {
	logf(false, "WARN", format, args...)
}

func Error(format string, args ...any) {
	logf(true, "ERROR", format, args...)
}

func logf(always bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
}
