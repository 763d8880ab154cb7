// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import "go.uber.org/zap"

type options struct {
	provider Provider
	logger   *zap.Logger
}

// Option configures [Open].
type Option func(*options)

// WithProvider opens the link through p instead of [System].
func WithProvider(p Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithLogger sets the logger for session lifecycle events.
// The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider == nil {
		o.provider = System()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
