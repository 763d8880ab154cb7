// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import "code.hybscloud.com/atomix"

// Stats is a snapshot of one session's traffic.
type Stats struct {
	FramesSent     uint64
	BytesSent      uint64
	FramesReceived uint64
	BytesReceived  uint64
	// Truncated counts receives whose frame did not fit the buffer.
	// Only receives that asked for RecvInfo can detect truncation.
	Truncated uint64
	// WouldBlock counts non-blocking attempts that found no frame.
	WouldBlock uint64
}

type counters struct {
	framesSent     atomix.Uint64
	bytesSent      atomix.Uint64
	framesReceived atomix.Uint64
	bytesReceived  atomix.Uint64
	truncated      atomix.Uint64
	wouldBlock     atomix.Uint64
}

func (c *counters) sent(n int) {
	c.framesSent.Add(1)
	c.bytesSent.Add(uint64(n))
}

func (c *counters) received(n int, info *RecvInfo) {
	c.framesReceived.Add(1)
	c.bytesReceived.Add(uint64(n))
	if info != nil && info.Truncated(n) {
		c.truncated.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		FramesSent:     c.framesSent.Load(),
		BytesSent:      c.bytesSent.Load(),
		FramesReceived: c.framesReceived.Load(),
		BytesReceived:  c.bytesReceived.Load(),
		Truncated:      c.truncated.Load(),
		WouldBlock:     c.wouldBlock.Load(),
	}
}
