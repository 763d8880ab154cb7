// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"code.hybscloud.com/kont"
)

// exprReturnFrame is boxed once so fused constructors do not allocate it.
var exprReturnFrame kont.Frame = kont.ReturnFrame{}

// identityResume is the identity resume function for EffectFrame construction.
func identityResume(v kont.Erased) kont.Erased { return v }

// ExprSendThen sends msg to dst and then continues with next.
// Fuses ExprPerform(Send{Dst: dst, Msg: msg}) + ExprThen.
func ExprSendThen[B any](dst, msg []byte, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = Send{Dst: dst, Msg: msg}
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

func recvBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(Received) kont.Expr[B])
	result := f(current.(Received))
	return kont.Erased(result.Value), result.Frame
}

// ExprRecvBind receives a frame into src and msg and passes the counts to f.
// Fuses ExprPerform(Recv{Src: src, Msg: msg}) + ExprBind.
func ExprRecvBind[B any](src, msg []byte, f func(Received) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = recvBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Recv{Src: src, Msg: msg}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}
