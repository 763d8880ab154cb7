// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"code.hybscloud.com/kont"
)

// linkDispatcher is the structural interface for link operations.
// DispatchLink is non-blocking at the receive boundary: it returns
// iox.ErrWouldBlock when no frame is available.
type linkDispatcher interface {
	DispatchLink(r Ref) (kont.Resumed, error)
}

// Send is the effect operation for transmitting one frame.
// Perform(Send{Dst: a, Msg: m}) sends m to the link address a.
type Send struct {
	kont.Phantom[struct{}]
	Dst  []byte
	Msg  []byte
	Info *SendInfo
}

// DispatchLink handles Send on the link. Sending does not report
// iox.ErrWouldBlock; flow control is left to the provider.
func (s Send) DispatchLink(r Ref) (kont.Resumed, error) {
	if err := r.Send(s.Dst, s.Msg, s.Info); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// Recv is the effect operation for receiving one frame into caller
// buffers. Perform(Recv{Src: s, Msg: m}) resumes with the byte counts.
type Recv struct {
	kont.Phantom[Received]
	Src  []byte
	Msg  []byte
	Info *RecvInfo
}

// DispatchLink handles Recv on the link with one non-blocking attempt.
// Returns iox.ErrWouldBlock if no frame is queued.
func (o Recv) DispatchLink(r Ref) (kont.Resumed, error) {
	got, err := r.tryRecv(o.Src, o.Msg, o.Info)
	if err != nil {
		return nil, err
	}
	return got, nil
}

// Bind is the effect operation for binding the link to a SAP.
// Perform(Bind{SAP: s}) resumes with the SAP the provider bound.
type Bind struct {
	kont.Phantom[uint32]
	SAP uint32
}

// DispatchLink handles Bind on the link. Never returns iox.ErrWouldBlock.
func (b Bind) DispatchLink(r Ref) (kont.Resumed, error) {
	bound, err := r.Bind(b.SAP)
	if err != nil {
		return nil, err
	}
	return bound, nil
}
