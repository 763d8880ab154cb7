// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"code.hybscloud.com/kont"
)

// SendThen sends msg to dst and then continues with next.
// Fuses Perform(Send{Dst: dst, Msg: msg}) + Then.
func SendThen[B any](dst, msg []byte, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Send{Dst: dst, Msg: msg}), next)
}

// RecvBind receives a frame into src and msg and passes the counts to f.
// Fuses Perform(Recv{Src: src, Msg: msg}) + Bind.
func RecvBind[B any](src, msg []byte, f func(Received) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Recv{Src: src, Msg: msg}), f)
}

// BindSAP binds the link to sap and passes the bound SAP to f.
// Fuses Perform(Bind{SAP: sap}) + Bind.
func BindSAP[B any](sap uint32, f func(uint32) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Bind{SAP: sap}), f)
}
