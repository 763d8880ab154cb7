// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"code.hybscloud.com/kont"
)

// Step evaluates a link protocol until the first effect suspension.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance dispatches the suspended link operation on r. It never blocks
// waiting for a frame: a Recv with nothing queued returns
// iox.ErrWouldBlock (the provider's timeout is not surfaced).
//
// On success the suspension is consumed and the protocol advances to the
// next effect or completion. On any error the suspension is returned
// unconsumed; after iox.ErrWouldBlock it may be retried, after any other
// error the caller should Discard it.
func Advance[R any](r Ref, susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	op, ok := susp.Op().(linkDispatcher)
	if !ok {
		panic("dlpi: unhandled effect in Advance")
	}
	v, err := op.DispatchLink(r)
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}
