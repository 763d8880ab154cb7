// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"math"
	"time"

	"code.hybscloud.com/iox"
	"go.uber.org/zap"
)

// Receive timeouts with special meaning.
const (
	Forever time.Duration = -1 // block until a frame arrives
	NoWait  time.Duration = 0  // return at once, with a frame or ErrTimedOut
)

// Received reports the byte counts of one completed receive.
type Received struct {
	AddrLen int // source address bytes written
	MsgLen  int // message bytes written
}

// Bind restricts the link to the service access point sap; for Ethernet
// the SAP is the ethertype. The provider may bind a different SAP than
// requested; the returned value is the one in effect.
func (r Ref) Bind(sap uint32) (uint32, error) {
	l, err := r.acquire()
	if err != nil {
		return 0, err
	}
	defer l.release()

	bound, res := l.provider.Bind(l.raw, sap)
	if err := res.Err(); err != nil {
		return 0, err
	}
	l.sap.Store(bound)
	l.bound.Store(1)
	l.log.Debug("link bound",
		zap.String("link", l.name),
		zap.Uint32("sap", sap),
		zap.Uint32("bound", bound))
	return bound, nil
}

// Send transmits msg to the link-layer address dst. A nil info sends on
// the bound SAP at default priority.
func (r Ref) Send(dst, msg []byte, info *SendInfo) error {
	l, err := r.acquire()
	if err != nil {
		return err
	}
	defer l.release()

	if err := l.provider.Send(l.raw, dst, msg, info).Err(); err != nil {
		return err
	}
	l.stats.sent(len(msg))
	return nil
}

// Recv receives one frame into msg and the sender's address into src.
//
// A negative timeout blocks, zero returns at once and a positive timeout
// waits up to that long, rounded up to whole milliseconds. Expiry is
// reported as [ErrTimedOut]. src should be [PhysAddrMax] bytes; a shorter
// buffer is not checked here. A frame longer than msg is truncated; info,
// when non-nil, reports its full length in TotalLen.
func (r Ref) Recv(src, msg []byte, timeout time.Duration, info *RecvInfo) (Received, error) {
	l, err := r.acquire()
	if err != nil {
		return Received{}, err
	}
	defer l.release()
	return l.recv(src, msg, millis(timeout), info)
}

func (l *link) recv(src, msg []byte, msec int, info *RecvInfo) (Received, error) {
	srcN, msgN, res := l.provider.Recv(l.raw, src, msg, msec, info)
	if err := res.Err(); err != nil {
		return Received{}, err
	}
	l.stats.received(msgN, info)
	return Received{AddrLen: srcN, MsgLen: msgN}, nil
}

// tryRecv makes one non-blocking receive attempt. No frame is reported as
// iox.ErrWouldBlock rather than as a timeout.
func (r Ref) tryRecv(src, msg []byte, info *RecvInfo) (Received, error) {
	l, err := r.acquire()
	if err != nil {
		return Received{}, err
	}
	defer l.release()

	got, err := l.recv(src, msg, 0, info)
	if IsTimeout(err) {
		l.stats.wouldBlock.Add(1)
		return Received{}, iox.ErrWouldBlock
	}
	return got, err
}

func millis(d time.Duration) int {
	switch {
	case d < 0:
		return -1
	case d == 0:
		return 0
	}
	if d > math.MaxInt32*time.Millisecond {
		return math.MaxInt32
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}

// EnableMulticast enables reception of frames sent to the group address addr.
func (r Ref) EnableMulticast(addr []byte) error {
	l, err := r.acquire()
	if err != nil {
		return err
	}
	defer l.release()
	return l.provider.EnableMulticast(l.raw, addr).Err()
}

// DisableMulticast stops reception of frames sent to addr.
func (r Ref) DisableMulticast(addr []byte) error {
	l, err := r.acquire()
	if err != nil {
		return err
	}
	defer l.release()
	return l.provider.DisableMulticast(l.raw, addr).Err()
}

// PromiscOn enables promiscuous mode at level.
func (r Ref) PromiscOn(level PromiscLevel) error {
	l, err := r.acquire()
	if err != nil {
		return err
	}
	defer l.release()
	if l.provider.PromiscOn(l.raw, level) == -1 {
		return errInvalid
	}
	return nil
}

// PromiscOff disables promiscuous mode at level.
func (r Ref) PromiscOff(level PromiscLevel) error {
	l, err := r.acquire()
	if err != nil {
		return err
	}
	defer l.release()
	if l.provider.PromiscOff(l.raw, level) == -1 {
		return errInvalid
	}
	return nil
}

// FD returns the descriptor behind the session. It becomes readable when a
// frame can be received without blocking. The descriptor stays owned by
// the session; do not close it.
func (r Ref) FD() (int, error) {
	l, err := r.acquire()
	if err != nil {
		return -1, err
	}
	defer l.release()
	return l.fd()
}

func (l *link) fd() (int, error) {
	fd := l.provider.FD(l.raw)
	if fd < 0 {
		return -1, errInvalid
	}
	return fd, nil
}
