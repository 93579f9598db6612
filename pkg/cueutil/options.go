// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the maximum accepted input size (1 MiB).
// Config files larger than this are almost certainly mistakes, and the
// limit keeps a hostile file from exhausting memory during parse.
const DefaultMaxFileSize int64 = 1 << 20

// Option configures ParseAndDecode behavior.
type Option func(*options)

type options struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    false,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMaxFileSize overrides the input size limit.
func WithMaxFileSize(size int64) Option {
	return func(o *options) {
		o.maxFileSize = size
	}
}

// WithConcrete requires every field to be concrete after unification.
// Leave it off for schemas with optional fields.
func WithConcrete() Option {
	return func(o *options) {
		o.concrete = true
	}
}
