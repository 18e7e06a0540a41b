package apiclient

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Call describes one completed request. Err is the exact value returned to
// the caller of the resource function.
type Call struct {
	Op         string
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Duration   time.Duration
	// File is set for uploads and binary downloads.
	File bool
	Err  error
}

// Observer is the single interception point of the client. Observers must
// not retain or modify Call.Err.
type Observer interface {
	Observe(ctx context.Context, call Call)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, call Call)

func (f ObserverFunc) Observe(ctx context.Context, call Call) { f(ctx, call) }

type observers []Observer

func (o observers) Observe(ctx context.Context, call Call) {
	for _, obs := range o {
		obs.Observe(ctx, call)
	}
}

// LogObserver writes every call to a zap logger. Failed file operations are
// logged at error level, everything else at debug.
type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger}
}

func (l *LogObserver) Observe(_ context.Context, call Call) {
	fields := []zap.Field{
		zap.String("op", call.Op),
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.String("request_id", call.RequestID),
		zap.Int("status", call.StatusCode),
		zap.Duration("duration", call.Duration),
	}
	switch {
	case call.Err == nil:
		l.logger.Debug("api call", fields...)
	case call.File:
		l.logger.Error("api file call failed", append(fields, zap.Error(call.Err))...)
	default:
		l.logger.Debug("api call failed", append(fields, zap.Error(call.Err))...)
	}
}
