// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"code.hybscloud.com/kont"
)

// RecvLoop receives frames into src and msg until step finishes
// (Cont-world). After each receive step sees the state and the byte
// counts and returns Left(next) to receive again or Right(result) to stop.
// The buffers are reused, so step must consume a frame before returning.
func RecvLoop[S, A any](src, msg []byte, initial S, step func(S, Received) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return RecvBind(src, msg, func(got Received) kont.Eff[A] {
		return kont.Bind(step(initial, got), func(e kont.Either[S, A]) kont.Eff[A] {
			if next, ok := e.GetLeft(); ok {
				return RecvLoop(src, msg, next, step)
			}
			result, _ := e.GetRight()
			return kont.Pure(result)
		})
	})
}

// ExprRecvLoop is [RecvLoop] for the Expr world. A step that completes
// without effects is continued inline instead of through a bind frame.
func ExprRecvLoop[S, A any](src, msg []byte, initial S, step func(S, Received) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	return ExprRecvBind(src, msg, func(got Received) kont.Expr[A] {
		return recvLoopNext(src, msg, step(initial, got), step)
	})
}

func recvLoopNext[S, A any](src, msg []byte, m kont.Expr[kont.Either[S, A]], step func(S, Received) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	if _, ok := m.Frame.(kont.ReturnFrame); ok {
		return recvLoopDecide(src, msg, m.Value, step)
	}
	bf := kont.AcquireBindFrame()
	bf.F = func(a kont.Erased) kont.Expr[kont.Erased] {
		result := recvLoopDecide(src, msg, a.(kont.Either[S, A]), step)
		return kont.Expr[kont.Erased]{Value: kont.Erased(result.Value), Frame: result.Frame}
	}
	bf.Next = kont.ReturnFrame{}
	var zero A
	return kont.Expr[A]{
		Value: zero,
		Frame: kont.ChainFrames(m.Frame, bf),
	}
}

func recvLoopDecide[S, A any](src, msg []byte, e kont.Either[S, A], step func(S, Received) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	if next, ok := e.GetLeft(); ok {
		return ExprRecvLoop(src, msg, next, step)
	}
	result, _ := e.GetRight()
	return kont.ExprReturn(result)
}
