// Package logger holds the process-wide zerolog logger of the merchant
// runtime. Call Init once at startup; components then take a tagged child
// with For so each line carries "component" next to "service".
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum level; empty or unknown values mean info.
	Level string
	// Pretty switches to zerolog's console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output  io.Writer
	Service string
	// ComponentLevels overrides Level per component, in the form
	// "gate=debug,backend=warn".
	ComponentLevels string
}

var (
	mu        sync.RWMutex
	instance  zerolog.Logger
	overrides map[string]zerolog.Level
	ready     bool
)

// Init builds the logger. Later calls return the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	overrides = parseOverrides(opts.ComponentLevels)
	lvl := parseLevel(opts.Level)
	// The global floor has to admit the most verbose override.
	floor := lvl
	for _, l := range overrides {
		floor = min(floor, l)
	}
	zerolog.SetGlobalLevel(floor)

	ctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	instance = ctx.Logger()
	ready = true
	return instance
}

// Get returns the logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// For returns the logger tagged with component, at that component's
// override level when one was configured.
func For(component string) zerolog.Logger {
	l := Get().With().Str("component", component).Logger()
	mu.RLock()
	lvl, ok := overrides[component]
	mu.RUnlock()
	if ok {
		l = l.Level(lvl)
	}
	return l
}

// Reset drops the logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = zerolog.Logger{}
	overrides = nil
	ready = false
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func parseOverrides(s string) map[string]zerolog.Level {
	out := make(map[string]zerolog.Level)
	for _, pair := range strings.Split(s, ",") {
		name, level, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		out[strings.TrimSpace(name)] = parseLevel(level)
	}
	return out
}
