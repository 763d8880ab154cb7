// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"context"
	"strings"

	"code.hybscloud.com/atomix"
	"go.uber.org/zap"
)

// link is the shared state behind a Session and all of its Refs.
//
// refs counts the owner plus every operation in flight. The native handle
// is closed when refs drops to zero after Close; released guards that
// close so a late acquire that backs out cannot repeat it.
type link struct {
	provider Provider
	raw      RawHandle
	name     string
	serial   Serial
	log      *zap.Logger
	// owner is the Session returned by Open; only it may Close.
	owner *Session

	refs     atomix.Uint32
	closing  atomix.Uint32
	released atomix.Uint32
	// closed is done once Close has been called; readiness waits watch it.
	closed   context.Context
	markDone context.CancelFunc

	bound atomix.Uint32
	sap   atomix.Uint32

	stats counters
}

// acquire pins the native handle for one operation. It fails once Close
// has started; the increment comes first so Close cannot release between
// the check and the use.
func (l *link) acquire() bool {
	l.refs.Add(1)
	if l.closing.Load() != 0 {
		l.release()
		return false
	}
	return true
}

func (l *link) release() {
	if l.refs.Add(^uint32(0)) != 0 {
		return
	}
	if l.released.Add(1) != 1 {
		return
	}
	l.provider.Close(l.raw)
	l.log.Debug("link released", zap.String("link", l.name), zap.Uint32("serial", l.serial))
}

// Ref is a non-owning reference to an open session. It is a small value,
// safe to copy and to use from several goroutines; it cannot close the
// session. Operations on a Ref whose session was closed return [ErrClosed].
type Ref struct {
	l *link
}

func (r Ref) acquire() (*link, error) {
	if r.l == nil || !r.l.acquire() {
		return nil, ErrClosed
	}
	return r.l, nil
}

// Name returns the link name the session was opened with.
func (r Ref) Name() string {
	if r.l == nil {
		return ""
	}
	return r.l.name
}

// Serial returns the serial number assigned at open.
func (r Ref) Serial() Serial {
	if r.l == nil {
		return 0
	}
	return r.l.serial
}

// SAP returns the SAP reported by the last successful Bind.
func (r Ref) SAP() (uint32, bool) {
	if r.l == nil || r.l.bound.Load() == 0 {
		return 0, false
	}
	return r.l.sap.Load(), true
}

// Closed reports whether Close has been called on the owning session.
func (r Ref) Closed() bool {
	return r.l == nil || r.l.closing.Load() != 0
}

// Stats returns a snapshot of the session's traffic counters.
func (r Ref) Stats() Stats {
	if r.l == nil {
		return Stats{}
	}
	return r.l.stats.snapshot()
}

// Session owns one open link instance. Exactly one Session exists per
// successful [Open]; share the link by handing out the embedded Ref, which
// carries every operation but Close. A Session value built around a Ref
// is not the owner and cannot close the link.
type Session struct {
	Ref
}

// Open attaches to the link named linkname.
//
// The name must not contain NUL; the provider adds the C terminator.
// On failure no handle is retained and nothing needs closing.
func Open(linkname string, flags Flag, opts ...Option) (*Session, error) {
	if strings.IndexByte(linkname, 0) >= 0 {
		return nil, ErrLinkNameInval
	}
	o := buildOptions(opts)

	raw, r := o.provider.Open(linkname, flags)
	if err := r.Err(); err != nil {
		o.logger.Debug("link open failed", zap.String("link", linkname), zap.Error(err))
		return nil, err
	}

	l := &link{
		provider: o.provider,
		raw:      raw,
		name:     linkname,
		serial:   nextSerial(),
		log:      o.logger,
	}
	l.closed, l.markDone = context.WithCancel(context.Background())
	s := &Session{Ref{l: l}}
	l.owner = s
	l.refs.Add(1)
	l.log.Debug("link opened",
		zap.String("link", linkname),
		zap.Uint32("serial", l.serial),
		zap.Uint32("flags", uint32(flags)))
	return s, nil
}

// Close releases the session. The first call drops ownership and wakes
// readiness waits; the native handle is closed once the last operation in
// flight returns, so a blocking Recv delays the release, not Close.
// Later calls, and calls on a Session that is not the owner, return
// [ErrClosed] and release nothing.
func (s *Session) Close() error {
	l := s.l
	if l == nil || l.owner != s || l.closing.Add(1) != 1 {
		return ErrClosed
	}
	l.markDone()
	l.log.Debug("link closing", zap.String("link", l.name), zap.Uint32("serial", l.serial))
	l.release()
	return nil
}
