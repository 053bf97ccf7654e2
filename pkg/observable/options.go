package observable

import (
	"log/slog"

	"github.com/google/uuid"
)

// options holds the construction settings shared by every Collection type.
type options struct {
	id     string
	logger *slog.Logger
}

// Option configures a Collection at construction.
type Option func(*options)

// WithID sets the identifier the collection reports through ID and in log
// records. An empty id keeps the generated default.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithLogger sets the logger the collection writes debug records to.
// Structural changes and subscription maintenance are logged at debug
// level. A nil logger disables logging, which is the default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{id: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
