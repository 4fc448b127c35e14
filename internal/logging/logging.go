// Copyright 2024 Josh Deprez
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

// Package logging configures slog for the novel binaries: a console handler
// and, optionally, a rotating JSON log file.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls New. FromEnv reads them from the environment:
//   - NOVEL_LOG_LEVEL=debug|info|warn|error
//   - NOVEL_LOG_FORMAT=text|json
//   - NOVEL_LOG_FILE=<path> (rotated)
//   - NOVEL_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string
	AddSource bool

	// File, if set, receives JSON logs through a rotating writer.
	File string

	// Console receives logs in Format. Nil means no console output.
	Console io.Writer
}

// FromEnv builds Options from environment variables, logging to stderr.
func FromEnv() Options {
	return Options{
		Level:     getenv("NOVEL_LOG_LEVEL", "info"),
		Format:    getenv("NOVEL_LOG_FORMAT", "text"),
		AddSource: strings.EqualFold(os.Getenv("NOVEL_LOG_SOURCE"), "true"),
		File:      os.Getenv("NOVEL_LOG_FILE"),
		Console:   os.Stderr,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// New builds a logger from opts. The returned closer closes the log file,
// if any.
func New(opts Options) (*slog.Logger, io.Closer) {
	hopts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var hs []slog.Handler
	if opts.Console != nil {
		if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
			hs = append(hs, slog.NewJSONHandler(opts.Console, hopts))
		} else {
			hs = append(hs, slog.NewTextHandler(opts.Console, hopts))
		}
	}

	var closer io.Closer = nopCloser{}
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lumberjack.Logger{
			Filename:   f,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		hs = append(hs, slog.NewJSONHandler(w, hopts))
		closer = w
	}

	switch len(hs) {
	case 0:
		return slog.New(discard{}), closer
	case 1:
		return slog.New(hs[0]), closer
	default:
		return slog.New(multi(hs)), closer
	}
}

// Init builds a logger with New and makes it the slog default.
func Init(opts Options) io.Closer {
	l, c := New(opts)
	slog.SetDefault(l)
	return c
}

// WithComponent annotates l with a component name.
func WithComponent(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// ParseLevel converts a level name to a slog.Level. Unknown names are Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// multi fans records out to several handlers.
type multi []slog.Handler

func (m multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multi) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make(multi, len(m))
	for i, h := range m {
		res[i] = h.WithAttrs(attrs)
	}
	return res
}

func (m multi) WithGroup(name string) slog.Handler {
	res := make(multi, len(m))
	for i, h := range m {
		res[i] = h.WithGroup(name)
	}
	return res
}

// discard drops everything.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
