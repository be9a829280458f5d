package pipeline

import (
	"context"
	"time"
)

// Logger is the logging surface the runner needs. The application's zap
// logger satisfies it.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

// RunSummary describes a finished run.
type RunSummary struct {
	SessionID   string
	RequesterID string
	Request     string
	Pipeline    string
	Resolution  Resolution
	Err         error
	Completed   bool
	Progress    int
	Debates     int
	StartedAt   time.Time
	Duration    time.Duration
}

// Observer is told about every run that reaches its end, including runs that
// ended without a result. It is not called for runs the consumer abandoned.
type Observer interface {
	RunFinished(ctx context.Context, summary RunSummary)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, summary RunSummary)

func (f ObserverFunc) RunFinished(ctx context.Context, summary RunSummary) {
	f(ctx, summary)
}

// SessionRegistry exposes live session state while a run is in progress.
// Remove receives the same state Register did, so a run never drops the
// entry of another run sharing its session id.
type SessionRegistry interface {
	Register(state *SessionState)
	Remove(state *SessionState)
}

type nopRegistry struct{}

func (nopRegistry) Register(*SessionState) {}
func (nopRegistry) Remove(*SessionState)   {}
