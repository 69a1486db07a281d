package editor

import (
	"time"

	tables "github.com/cozy/quill-go/table"
	"go.uber.org/zap"
)

// Options are the settings of a session that can come from configuration.
type Options struct {
	History HistoryOptions `mapstructure:"history"`
}

// HistoryOptions configure the undo stack.
type HistoryOptions struct {
	// Changes recorded within Delay of the previous one are merged in the
	// same undo entry.
	Delay time.Duration `mapstructure:"delay"`
	// MaxStack is the number of undo entries kept.
	MaxStack int `mapstructure:"max_stack"`
	// UserOnly records only the changes made by the user.
	UserOnly bool `mapstructure:"user_only"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		History: HistoryOptions{
			Delay:    time.Second,
			MaxStack: 100,
		},
	}
}

// Option configures a Session.
type Option func(*Session)

// WithOptions sets the configurable options. Zero values keep the defaults.
func WithOptions(o Options) Option {
	return func(s *Session) {
		if o.History.Delay > 0 {
			s.options.History.Delay = o.History.Delay
		}
		if o.History.MaxStack > 0 {
			s.options.History.MaxStack = o.History.MaxStack
		}
		s.options.History.UserOnly = o.History.UserOnly
	}
}

// WithLogger sets the logger of the session, its document and its table
// engine.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngine sets the table engine.
func WithEngine(e *tables.Engine) Option {
	return func(s *Session) {
		s.engine = e
	}
}

// WithClock sets the time source of the history.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}
