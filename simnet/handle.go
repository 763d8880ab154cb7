// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simnet

import (
	"sync"

	"code.hybscloud.com/dlpi"
	"code.hybscloud.com/lfq"
	"golang.org/x/sys/unix"
)

type frame struct {
	src     []byte
	dst     []byte
	sap     uint32
	payload []byte
}

// handle is one open instance of a link.
//
// The ring is single-producer single-consumer; mu serializes both ends.
// pending mirrors the ring length and the pipe holds one byte per queued
// frame, so rfd is readable exactly while pending is non-zero.
type handle struct {
	id   dlpi.RawHandle
	link *netLink
	excl bool

	mu      sync.Mutex
	bound   bool
	sap     uint32
	multi   map[string]struct{}
	promisc uint8
	ring    lfq.SPSC[frame]
	pending int
	closed  bool
	rfd     int
	wfd     int

	// notify carries one wakeup for blocked receivers; done is closed
	// with the handle.
	notify chan struct{}
	done   chan struct{}
}

func newHandle(id dlpi.RawHandle, l *netLink, depth int, excl bool) (*handle, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, err
	}
	for _, fd := range p {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, err
		}
	}
	h := &handle{
		id:     id,
		link:   l,
		excl:   excl,
		multi:  make(map[string]struct{}),
		rfd:    p[0],
		wfd:    p[1],
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.ring.Init(depth)
	return h, nil
}

func (h *handle) promiscAt(level dlpi.PromiscLevel) bool {
	return h.promisc&(1<<level) != 0
}

var token = []byte{0}

// put queues fr. It reports false when the ring is full.
func (h *handle) put(fr frame) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return true
	}
	if err := h.ring.Enqueue(&fr); err != nil {
		return false
	}
	h.pending++
	unix.Write(h.wfd, token)
	h.signal()
	return true
}

// take dequeues the oldest frame, if any.
func (h *handle) take() (frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.pending == 0 {
		return frame{}, false
	}
	fr, err := h.ring.Dequeue()
	if err != nil {
		return frame{}, false
	}
	h.pending--
	var b [1]byte
	unix.Read(h.rfd, b[:])
	if h.pending > 0 {
		h.signal()
	}
	return fr, true
}

func (h *handle) signal() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *handle) shut() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	unix.Close(h.rfd)
	unix.Close(h.wfd)
	for h.pending > 0 {
		h.ring.Dequeue()
		h.pending--
	}
}

// accepts reports whether a frame from link from to dst on sap reaches h.
func (h *handle) accepts(from *netLink, dst []byte, sap uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	phys := h.promiscAt(dlpi.PromiscPhys)
	if from == h.link && (!phys || h.promiscAt(dlpi.PromiscRxOnly)) {
		return false
	}
	if !(h.bound && h.sap == sap) && !h.promiscAt(dlpi.PromiscSAP) {
		return false
	}
	switch {
	case phys:
		return true
	case string(dst) == string(h.link.addr), string(dst) == string(broadcast):
		return true
	case dst[0]&1 != 0:
		_, ok := h.multi[string(dst)]
		return ok || h.promiscAt(dlpi.PromiscMulti)
	}
	return false
}
