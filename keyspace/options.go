package keyspace

import (
	"github.com/google/uuid"
)

// Options configures a Space.
type Options struct {
	// newID supplies ids for inserted items. Tests replace it to get
	// predictable ids.
	newID func() uuid.UUID
}

// Option sets a field of Options.
type Option func(*Options)

// NewOptions applies opts over the defaults. Item ids default to random uuids.
func NewOptions(opts ...Option) Options {
	options := Options{
		newID: uuid.New,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}

// WithIDSource sets the function used to create the id of each inserted item.
func WithIDSource(newID func() uuid.UUID) Option {
	return func(opts *Options) {
		opts.newID = newID
	}
}
