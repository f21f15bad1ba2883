package logger

import "wallet_core/internal/app/port"

// adapter implements port.Logger on top of the package-level functions.
type adapter struct{}

// NewAdapter returns a port.Logger backed by the global logger.
func NewAdapter() port.Logger {
	return adapter{}
}

func (adapter) Info(msg string, args ...any) { Info(msg, args...) }
func (adapter) Debug(msg string, args ...any) { Debug(msg, args...) }
func (adapter) Warn(msg string, args ...any) { Warn(msg, args...) }
func (adapter) Error(msg string, args ...any) { Error(msg, args...) }
