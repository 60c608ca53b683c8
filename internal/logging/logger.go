// Package logging provides the small structured-logging mixin shared by the
// decoder's components.
package logging

import "log/slog"

// Loggable is implemented by types that support a pluggable logger.
type Loggable interface {
	SetLogger(logger *slog.Logger)
	GetLogger() *slog.Logger
}

// Mixin embeds into a component to give it a default, replaceable logger.
type Mixin struct {
	Logger *slog.Logger
}

// NewMixin creates a Mixin using the default slog logger.
func NewMixin() Mixin {
	return Mixin{Logger: slog.Default()}
}

// SetLogger replaces the logger, ignoring a nil argument.
func (m *Mixin) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.Logger = logger
	}
}

// GetLogger returns the current logger, lazily defaulting if unset.
func (m *Mixin) GetLogger() *slog.Logger {
	if m.Logger == nil {
		m.Logger = slog.Default()
	}
	return m.Logger
}
