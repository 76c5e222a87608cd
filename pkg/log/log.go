// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	actionWidth  = 12 // Width for action text
	maxNameWidth = 60
)

// 🎯 FileOperation is one per-file outcome of a run
type FileOperation struct {
	Source string // Source file path
	Dest   string // Destination file name
	Action string // added, skipped, renamed, overwritten, deleted, rejected
	Detail string // Optional free text (reason, digest)
}

// 📦 RunOperation describes the run being logged
type RunOperation struct {
	Action      string
	Sources     []string
	Destination string
	Scheme      string
	ConfigPath  string
}

// Totals are the counts printed when a run ends.
type Totals struct {
	Total   int
	Copied  int
	Renamed int
	Skipped int
	Deleted int
}

// 🎯 Logger writes human-readable progress to a console and a plain log
// (usually the per-run log file) through zerolog.
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *RunOperation
	operations []FileOperation
}

// 🏭 New creates a new logger. file receives the zerolog stream; pass
// io.Discard to keep only the console.
func New(console io.Writer, file io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(NewFileWriter(file)).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// Nop returns a logger that writes nothing.
func Nop() *Logger {
	return New(io.Discard, io.Discard, zerolog.Disabled)
}

// NewFileWriter formats zerolog events as plain "[time] LEVEL message key=value"
// lines without color codes.
func NewFileWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a no-op logger
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return Nop()
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func actionStyle(action string) (rune, color.Attribute) {
	switch action {
	case "added":
		return '✓', color.FgGreen
	case "overwritten":
		return '⟳', color.FgBlue
	case "renamed":
		return '↪', color.FgMagenta
	case "deleted":
		return '✗', color.FgRed
	case "rejected":
		return '⊘', color.FgYellow
	default:
		return '-', color.FgHiBlack
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	symbol, symbolColor := actionStyle(op.Action)

	name := op.Dest
	if name == "" {
		name = op.Source
	}
	width := nameWidth
	if len(name) > width {
		width = min(len(name), maxNameWidth)
	}

	line := fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", width, name),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", actionWidth, op.Action)))

	if op.Detail != "" {
		line += " " + color.New(color.Faint).Sprint(op.Detail)
	}
	return strings.TrimRight(line, " ")
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Info().
		Str("source", op.Source).
		Str("dest", op.Dest).
		Str("action", op.Action).
		Str("detail", op.Detail).
		Msg("[" + strings.ToUpper(op.Action) + "]")
}

// 📝 StartRun starts a new run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	fmt.Fprintf(l.console, "[collecting into %s]\n",
		color.New(color.FgCyan).Sprint(op.Destination))

	for _, src := range op.Sources {
		fmt.Fprintf(l.console, "%s %s %s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(src),
			color.New(color.Faint).Sprint("•"),
			color.New(color.FgYellow).Sprint(op.Scheme))
	}

	l.zlog.Info().
		Str("action", op.Action).
		Str("config", op.ConfigPath).
		Strs("sources", op.Sources).
		Str("destination", op.Destination).
		Str("rename_scheme", op.Scheme).
		Msg("=== starting " + op.Action + " ===")
}

// 📝 EndRun ends the current run and logs its totals
func (l *Logger) EndRun(ctx context.Context, totals Totals) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("action", l.currentOp.Action).
		Int("files", len(l.operations)).
		Int("total", totals.Total).
		Int("copied", totals.Copied).
		Int("renamed", totals.Renamed).
		Int("skipped", totals.Skipped).
		Int("deleted", totals.Deleted).
		Msg("=== " + l.currentOp.Action + " complete ===")

	l.currentOp = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("imgcollect")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
