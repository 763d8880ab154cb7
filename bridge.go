// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"code.hybscloud.com/kont"
)

// Reify converts a Cont-world link protocol to Expr-world, for
// [ExecExpr], [RunExpr] or stepping with [Step] and [Advance].
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world link protocol to Cont-world.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}
