// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simnet

import (
	"time"

	"code.hybscloud.com/dlpi"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var _ dlpi.Provider = (*Fabric)(nil)

// Open opens a handle on the named link. An exclusive open fails with
// EBUSY while the link has other handles, and blocks later opens until
// it is closed.
func (f *Fabric) Open(linkname string, flags dlpi.Flag) (dlpi.RawHandle, dlpi.Result) {
	if !validName(linkname) {
		return 0, provider(dlpi.CodeLinkNameInval)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[linkname]
	if !ok {
		return 0, provider(dlpi.CodeNoLink)
	}
	excl := flags&dlpi.Excl != 0
	if l.excl || excl && l.opens > 0 {
		return 0, system(unix.EBUSY)
	}
	f.next++
	h, err := newHandle(f.next, l, f.depth, excl)
	if err != nil {
		if errno, ok := err.(unix.Errno); ok {
			return 0, system(errno)
		}
		return 0, provider(dlpi.CodeFailure)
	}
	l.opens++
	l.excl = l.excl || excl
	f.handles[h.id] = h
	f.log.Debug("handle opened", zap.String("link", linkname), zap.Uint64("handle", uint64(h.id)))
	return h.id, dlpi.OK
}

// Close closes a handle. Closing a handle that is not open is counted
// by DoubleCloses and otherwise ignored.
func (f *Fabric) Close(id dlpi.RawHandle) {
	f.mu.Lock()
	h, ok := f.handles[id]
	if ok {
		delete(f.handles, id)
		h.link.opens--
		if h.excl {
			h.link.excl = false
		}
	}
	f.mu.Unlock()
	if !ok {
		f.doubleCloses.Add(1)
		f.log.Warn("close of handle not open", zap.Uint64("handle", uint64(id)))
		return
	}
	h.shut()
	f.log.Debug("handle closed", zap.String("link", h.link.name), zap.Uint64("handle", uint64(id)))
}

// Send delivers msg to every handle on the segment whose address, SAP
// and promiscuous filters accept it. Send requires a bound handle.
func (f *Fabric) Send(id dlpi.RawHandle, dst, msg []byte, info *dlpi.SendInfo) dlpi.Result {
	h := f.lookup(id)
	if h == nil {
		return provider(dlpi.CodeInHandle)
	}
	h.mu.Lock()
	bound, sap := h.bound, h.sap
	h.mu.Unlock()
	if !bound {
		return provider(dlpi.CodeFailure)
	}
	if len(dst) != len(h.link.addr) {
		return provider(dlpi.CodeInval)
	}
	if len(msg) > h.link.mtu {
		return system(unix.EMSGSIZE)
	}
	if info != nil {
		if !validPriority(info.Priority) {
			return provider(dlpi.CodeInval)
		}
		sap = info.SAP
	}
	fr := frame{
		src:     h.link.addr,
		dst:     append([]byte(nil), dst...),
		sap:     sap,
		payload: append([]byte(nil), msg...),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.handles {
		if r == h || !r.accepts(h.link, fr.dst, sap) {
			continue
		}
		if !r.put(fr) {
			f.dropped.Add(1)
			f.log.Debug("frame dropped", zap.String("link", r.link.name), zap.Uint64("handle", uint64(r.id)))
		}
	}
	return dlpi.OK
}

// Recv dequeues one frame. msec < 0 blocks, 0 polls and > 0 waits up to
// that many milliseconds before reporting DLPI_ETIMEDOUT.
func (f *Fabric) Recv(id dlpi.RawHandle, src, msg []byte, msec int, info *dlpi.RecvInfo) (int, int, dlpi.Result) {
	h := f.lookup(id)
	if h == nil {
		return 0, 0, provider(dlpi.CodeInHandle)
	}
	var timeout <-chan time.Time
	if msec > 0 {
		t := time.NewTimer(time.Duration(msec) * time.Millisecond)
		defer t.Stop()
		timeout = t.C
	}
	for {
		if fr, ok := h.take(); ok {
			return deliver(fr, src, msg, info)
		}
		if msec == 0 {
			return 0, 0, provider(dlpi.CodeTimedOut)
		}
		select {
		case <-h.notify:
		case <-h.done:
			return 0, 0, provider(dlpi.CodeInHandle)
		case <-timeout:
			return 0, 0, provider(dlpi.CodeTimedOut)
		}
	}
}

func deliver(fr frame, src, msg []byte, info *dlpi.RecvInfo) (int, int, dlpi.Result) {
	srcN := copy(src, fr.src)
	msgN := copy(msg, fr.payload)
	if info != nil {
		*info = dlpi.RecvInfo{DestAddrType: dlpi.AddrUnicast, TotalLen: len(fr.payload)}
		info.DestAddrLen = uint8(copy(info.DestAddr[:], fr.dst))
		if fr.dst[0]&1 != 0 {
			info.DestAddrType = dlpi.AddrGroup
		}
	}
	return srcN, msgN, dlpi.OK
}

// Bind binds the handle to sap. Ethernet SAPs above 0xFFFF are refused.
func (f *Fabric) Bind(id dlpi.RawHandle, sap uint32) (uint32, dlpi.Result) {
	h := f.lookup(id)
	if h == nil {
		return 0, provider(dlpi.CodeInHandle)
	}
	if sap > 0xFFFF {
		return 0, provider(dlpi.CodeUnavailSAP)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bound {
		return 0, provider(dlpi.CodeFailure)
	}
	h.bound, h.sap = true, sap
	return sap, dlpi.OK
}

// EnableMulticast subscribes the handle to the group address addr.
func (f *Fabric) EnableMulticast(id dlpi.RawHandle, addr []byte) dlpi.Result {
	h := f.lookup(id)
	if h == nil {
		return provider(dlpi.CodeInHandle)
	}
	if len(addr) != len(h.link.addr) || addr[0]&1 == 0 {
		return provider(dlpi.CodeInval)
	}
	h.mu.Lock()
	h.multi[string(addr)] = struct{}{}
	h.mu.Unlock()
	return dlpi.OK
}

// DisableMulticast removes a subscription added by EnableMulticast.
func (f *Fabric) DisableMulticast(id dlpi.RawHandle, addr []byte) dlpi.Result {
	h := f.lookup(id)
	if h == nil {
		return provider(dlpi.CodeInHandle)
	}
	if len(addr) != len(h.link.addr) || addr[0]&1 == 0 {
		return provider(dlpi.CodeInval)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.multi[string(addr)]; !ok {
		return provider(dlpi.CodeFailure)
	}
	delete(h.multi, string(addr))
	return dlpi.OK
}

// PromiscOn returns 0, or -1 for an unknown level or handle.
func (f *Fabric) PromiscOn(id dlpi.RawHandle, level dlpi.PromiscLevel) int {
	h := f.lookup(id)
	if h == nil || level < dlpi.PromiscPhys || level > dlpi.PromiscRxOnly {
		return -1
	}
	h.mu.Lock()
	h.promisc |= 1 << level
	h.mu.Unlock()
	return 0
}

// PromiscOff returns 0, or -1 if level was not on.
func (f *Fabric) PromiscOff(id dlpi.RawHandle, level dlpi.PromiscLevel) int {
	h := f.lookup(id)
	if h == nil || level < dlpi.PromiscPhys || level > dlpi.PromiscRxOnly {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.promiscAt(level) {
		return -1
	}
	h.promisc &^= 1 << level
	return 0
}

// FD returns the handle's readiness descriptor, or -1.
func (f *Fabric) FD(id dlpi.RawHandle) int {
	h := f.lookup(id)
	if h == nil {
		return -1
	}
	return h.rfd
}

func validPriority(p dlpi.Priority) bool {
	const dontCare, highest = -2, 100
	return p.Min >= dontCare && p.Min <= highest && p.Max >= dontCare && p.Max <= highest
}
