// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Run runs two Cont-world link protocols, a on ra and b on rb, and
// returns both results. ra and rb may refer to the same session.
// Interleaves execution of both sides on the calling goroutine using
// adaptive backoff (iox.Backoff) when neither side can make progress.
// Does not spawn goroutines or create channels.
//
// The first error on either side, a Throw included, discards both
// protocols and is returned. Run also stops when ctx is done.
func Run[A, B any](ctx context.Context, ra Ref, a kont.Eff[A], rb Ref, b kont.Eff[B]) (A, B, error) {
	return RunExpr(ctx, ra, Reify(a), rb, Reify(b))
}

// RunExpr is [Run] for Expr-world protocols.
func RunExpr[A, B any](ctx context.Context, ra Ref, a kont.Expr[A], rb Ref, b kont.Expr[B]) (A, B, error) {
	resultA, suspA := Step(a)
	resultB, suspB := Step(b)
	var bo iox.Backoff

	fail := func(err error) (A, B, error) {
		if suspA != nil {
			suspA.Discard()
		}
		if suspB != nil {
			suspB.Discard()
		}
		var za A
		var zb B
		return za, zb, err
	}

	for suspA != nil || suspB != nil {
		progress := false
		if suspA != nil {
			var err error
			resultA, suspA, err = advance(ra, suspA)
			switch {
			case err == nil:
				progress = true
			case !iox.IsWouldBlock(err):
				return fail(err)
			}
		}
		if suspB != nil {
			var err error
			resultB, suspB, err = advance(rb, suspB)
			switch {
			case err == nil:
				progress = true
			case !iox.IsWouldBlock(err):
				return fail(err)
			}
		}
		if progress {
			bo.Reset()
			continue
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		bo.Wait()
	}
	return resultA, resultB, nil
}

// advance is Advance extended with error effects. A Throw leaves the
// suspension in place for the caller to discard.
func advance[R any](r Ref, susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	if eop, ok := susp.Op().(errorDispatcher); ok {
		var ctx kont.ErrorContext[error]
		v, _ := eop.DispatchError(&ctx)
		if ctx.HasErr {
			var zero R
			return zero, susp, ctx.Err
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	return Advance(r, susp)
}
