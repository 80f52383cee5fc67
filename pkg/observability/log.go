package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHTTPHooks writes one structured access-log line per response.
type LogHTTPHooks struct {
	logger *log.Logger
}

// NewLogHTTPHooks returns HTTPHooks that log to logger, or to the
// charmbracelet default logger when logger is nil.
func NewLogHTTPHooks(logger *log.Logger) *LogHTTPHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHTTPHooks{logger: logger}
}

// OnRequest logs at debug level.
func (h *LogHTTPHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.logger.Debug("request", "id", requestID, "method", method, "path", path)
}

// OnResponse logs at info level, or warn for 5xx responses.
func (h *LogHTTPHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	kv := []any{"id", requestID, "method", method, "path", path, "status", status, "duration", d.Round(time.Microsecond)}
	if status >= 500 {
		h.logger.Warn("response", kv...)
		return
	}
	h.logger.Info("response", kv...)
}

// LogImposeHooks logs pipeline events at debug level.
type LogImposeHooks struct {
	NoopImposeHooks
	logger *log.Logger
}

// NewLogImposeHooks returns ImposeHooks that log to logger.
func NewLogImposeHooks(logger *log.Logger) *LogImposeHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogImposeHooks{logger: logger}
}

// OnImposeComplete logs the layout duration.
func (h *LogImposeHooks) OnImposeComplete(_ context.Context, name string, cells int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("impose failed", "name", name, "error", err)
		return
	}
	h.logger.Debug("imposed", "name", name, "cells", cells, "duration", d)
}

// OnRenderComplete logs the render duration.
func (h *LogImposeHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("rendered", "formats", formats, "duration", d)
}

var (
	_ HTTPHooks   = (*LogHTTPHooks)(nil)
	_ ImposeHooks = (*LogImposeHooks)(nil)
)
