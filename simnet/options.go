// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simnet

import "go.uber.org/zap"

// DefaultQueueDepth is the receive ring capacity of each handle.
const DefaultQueueDepth = 64

// DefaultMTU is the payload limit of links added without one.
const DefaultMTU = 1500

type options struct {
	logger *zap.Logger
	depth  int
	mtu    int
}

// Option configures a Fabric.
type Option func(*options)

// WithLogger routes fabric events to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithQueueDepth sets the per-handle receive ring capacity. Frames that
// arrive while the ring is full are dropped and counted.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.depth = n
		}
	}
}

// WithMTU sets the payload limit for links added afterwards.
func WithMTU(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.mtu = n
		}
	}
}
