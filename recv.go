// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"context"

	"code.hybscloud.com/iox"
)

// Receive is a pending self-polling receive created by [Ref.RecvAsync].
//
// Each Poll makes exactly one non-blocking attempt. While no frame is
// available Poll returns iox.ErrWouldBlock and the Receive stays pending;
// the first frame or the first other error makes it ready, after which
// Poll returns that outcome without touching the link again.
//
// A pending Receive can be dropped at any time. Attempts are atomic at
// the provider, so abandoning one never leaves a partial frame behind.
// A Receive is driven by one goroutine at a time.
type Receive struct {
	ref   Ref
	src   []byte
	msg   []byte
	info  *RecvInfo
	ready bool
	got   Received
	err   error
}

// RecvAsync prepares a self-polling receive into src and msg. No attempt
// is made until the first Poll. src should be [PhysAddrMax] bytes.
func (r Ref) RecvAsync(src, msg []byte, info *RecvInfo) *Receive {
	return &Receive{ref: r, src: src, msg: msg, info: info}
}

// Poll makes one non-blocking receive attempt, unless already ready.
func (rv *Receive) Poll() (Received, error) {
	if rv.ready {
		return rv.got, rv.err
	}
	got, err := rv.ref.tryRecv(rv.src, rv.msg, rv.info)
	if iox.IsWouldBlock(err) {
		return Received{}, err
	}
	rv.ready, rv.got, rv.err = true, got, err
	return got, err
}

// Ready reports whether the receive has completed.
func (rv *Receive) Ready() bool {
	return rv.ready
}

// Wait polls until the receive completes or ctx is done, backing off
// adaptively (iox.Backoff) between empty attempts. On cancellation the
// receive stays pending and ctx.Err() is returned.
func (rv *Receive) Wait(ctx context.Context) (Received, error) {
	var bo iox.Backoff
	for {
		got, err := rv.Poll()
		if !iox.IsWouldBlock(err) {
			return got, err
		}
		if err := ctx.Err(); err != nil {
			return Received{}, err
		}
		bo.Wait()
	}
}
