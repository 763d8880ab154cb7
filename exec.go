// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// errorDispatcher is the structural interface of kont error effects
// whose error type is error.
type errorDispatcher interface {
	DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
}

// linkHandler handles link and error effects for one protocol run.
// Link ops wait on iox.ErrWouldBlock via readiness. Any link error and
// any Throw short-circuit the protocol with Left.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type linkHandler[R any] struct {
	ctx    context.Context
	ref    Ref
	rd     *readiness
	errCtx *kont.ErrorContext[error]
}

// Dispatch implements kont.Handler. Dispatch order: Link → Error.
func (h linkHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if lop, ok := op.(linkDispatcher); ok {
		v, err := dispatchWait(h.ctx, h.ref, lop, h.rd)
		if err != nil {
			return kont.Left[error, R](err), false
		}
		return v, true
	}
	if eop, ok := op.(errorDispatcher); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[error, R](h.errCtx.Err), false
		}
		return v, true
	}
	panic("dlpi: unhandled effect in linkHandler")
}

// dispatchWait retries op until it completes, parking on rd between
// attempts that would block.
func dispatchWait(ctx context.Context, r Ref, op linkDispatcher, rd *readiness) (kont.Resumed, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := op.DispatchLink(r)
		if !iox.IsWouldBlock(err) {
			return v, err
		}
		if err := rd.wait(ctx); err != nil {
			return nil, err
		}
	}
}

// Exec runs a Cont-world link protocol on r to completion.
//
// Receives that find no frame park on the session descriptor until it is
// readable, or back off adaptively (iox.Backoff) when the provider has
// none. The first link error, a Throw of kont.ThrowError[error, R], the
// cancellation of ctx or the close of the session stops the protocol and
// is returned as the error.
func Exec[R any](ctx context.Context, r Ref, protocol kont.Eff[R]) (R, error) {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[error, R]](protocol, func(v R) kont.Either[error, R] {
		return kont.Right[error, R](v)
	})
	rd := &readiness{ref: r}
	defer rd.close()
	var errCtx kont.ErrorContext[error]
	h := linkHandler[R]{ctx: ctx, ref: r, rd: rd, errCtx: &errCtx}
	return unwrap(kont.Handle(wrapped, h))
}

// ExecExpr runs an Expr-world link protocol on r to completion.
// It waits and fails the same way as [Exec].
func ExecExpr[R any](ctx context.Context, r Ref, protocol kont.Expr[R]) (R, error) {
	wrapped := kont.ExprMap(protocol, func(v R) kont.Either[error, R] {
		return kont.Right[error, R](v)
	})
	rd := &readiness{ref: r}
	defer rd.close()
	var errCtx kont.ErrorContext[error]
	h := linkHandler[R]{ctx: ctx, ref: r, rd: rd, errCtx: &errCtx}
	return unwrap(kont.HandleExpr(wrapped, h))
}

func unwrap[R any](e kont.Either[error, R]) (R, error) {
	if err, ok := e.GetLeft(); ok {
		var zero R
		return zero, err
	}
	v, _ := e.GetRight()
	return v, nil
}
