// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"context"
	"errors"
	"sync"

	"code.hybscloud.com/iox"
	"golang.org/x/sys/unix"
)

// RecvReady receives one frame, parking the goroutine in poll(2) on the
// session descriptor instead of retrying.
//
// It alternates between waiting for readability and one non-blocking
// attempt. An attempt that finds nothing (another receiver took the
// frame) goes back to waiting. Cancelling ctx returns ctx.Err(); closing
// the session returns [ErrClosed]. Neither consumes a frame.
func (r Ref) RecvReady(ctx context.Context, src, msg []byte, info *RecvInfo) (Received, error) {
	if err := ctx.Err(); err != nil {
		return Received{}, err
	}
	l, err := r.acquire()
	if err != nil {
		return Received{}, err
	}
	defer l.release()

	fd, err := l.fd()
	if err != nil {
		return Received{}, err
	}
	w, err := newWaiter(ctx, l)
	if err != nil {
		return Received{}, err
	}
	defer w.close()

	state := awaitReadable
	for {
		switch state {
		case awaitReadable:
			if err := w.wait(ctx, fd); err != nil {
				return Received{}, err
			}
			state = attemptRecv
		case attemptRecv:
			got, err := l.recv(src, msg, 0, info)
			if IsTimeout(err) {
				l.stats.wouldBlock.Add(1)
				state = awaitReadable
				continue
			}
			return got, err
		}
	}
}

type recvState uint8

const (
	awaitReadable recvState = iota
	attemptRecv
)

var wakeByte = []byte{1}

// waiter polls a session descriptor together with a self-pipe. Context
// cancellation and session close write to the pipe, so a parked poll
// returns promptly without a timeout.
type waiter struct {
	l      *link
	rd, wr int
	stops  [2]func() bool

	mu     sync.Mutex
	closed bool
}

func newWaiter(ctx context.Context, l *link) (*waiter, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, errnoError(err)
	}
	if err := unix.SetNonblock(p[1], true); err != nil {
		unix.Close(p[0])
		unix.Close(p[1])
		return nil, errnoError(err)
	}
	w := &waiter{l: l, rd: p[0], wr: p[1]}
	w.stops[0] = context.AfterFunc(ctx, w.wake)
	w.stops[1] = context.AfterFunc(l.closed, w.wake)
	return w, nil
}

func (w *waiter) wake() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		unix.Write(w.wr, wakeByte)
	}
}

// wait returns nil once fd is readable or has an error condition pending;
// the following receive attempt reports the condition.
func (w *waiter) wait(ctx context.Context, fd int) error {
	fds := [2]unix.PollFd{
		{Fd: int32(fd), Events: unix.POLLIN},
		{Fd: int32(w.rd), Events: unix.POLLIN},
	}
	for {
		if w.l.closed.Err() != nil {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fds[0].Revents, fds[1].Revents = 0, 0
		_, err := unix.Poll(fds[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errnoError(err)
		}
		if fds[1].Revents != 0 {
			continue
		}
		if fds[0].Revents&unix.POLLNVAL != 0 {
			return SystemError{Errno: unix.EBADF}
		}
		if fds[0].Revents != 0 {
			return nil
		}
	}
}

func (w *waiter) close() {
	for _, stop := range w.stops {
		stop()
	}
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	unix.Close(w.rd)
	unix.Close(w.wr)
}

func errnoError(err error) error {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return SystemError{Errno: errno}
	}
	return err
}

// readiness parks a protocol runner between non-blocking attempts. It
// waits on the session descriptor when there is one and falls back to
// adaptive backoff (iox.Backoff) when the provider has none.
type readiness struct {
	ref      Ref
	l        *link
	fd       int
	w        *waiter
	fallback bool
	bo       iox.Backoff
}

func (rd *readiness) wait(ctx context.Context) error {
	if rd.l == nil && !rd.fallback {
		if err := rd.init(ctx); err != nil {
			return err
		}
	}
	if rd.fallback {
		if rd.ref.Closed() {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rd.bo.Wait()
		return nil
	}
	return rd.w.wait(ctx, rd.fd)
}

func (rd *readiness) init(ctx context.Context) error {
	l, err := rd.ref.acquire()
	if err != nil {
		return err
	}
	fd, err := l.fd()
	if err != nil {
		l.release()
		rd.fallback = true
		return nil
	}
	w, err := newWaiter(ctx, l)
	if err != nil {
		l.release()
		rd.fallback = true
		return nil
	}
	rd.l, rd.fd, rd.w = l, fd, w
	return nil
}

func (rd *readiness) close() {
	if rd.w != nil {
		rd.w.close()
	}
	if rd.l != nil {
		rd.l.release()
	}
}
