// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dlpi provides raw link-layer sessions over the illumos Data Link
// Provider Interface (libdlpi), with non-blocking and effect-based receive
// paths on [code.hybscloud.com/kont].
//
// A [Session] owns one open link instance; its embedded [Ref] is a
// copyable, non-owning handle that carries every operation but Close.
// The native handle is released exactly once, after Close and after the
// last operation in flight.
//
// # Architecture
//
//   - Provider: [Provider] abstracts libdlpi. [System] returns the cgo binding on illumos and a stub reporting ENOTSUP elsewhere; package simnet provides an in-memory fabric.
//   - Results: Every native result decodes into nil, [ProviderError], [SystemError] or [RawError]. [IsTimeout] recognizes [ErrTimedOut].
//   - Non-blocking: [Ref.RecvAsync] polls; attempts that find no frame return [code.hybscloud.com/iox.ErrWouldBlock].
//   - Readiness: [Ref.RecvReady] parks in poll(2) on the session descriptor and wakes on cancellation or Close.
//
// # API Topologies
//
//   - Synchronous: [Open], [Session.Close], [Ref.Bind], [Ref.Send], [Ref.Recv], [Ref.EnableMulticast], [Ref.DisableMulticast], [Ref.PromiscOn], [Ref.PromiscOff], [Ref.FD].
//   - Operations: [Send], [Recv], [Bind] as kont effects.
//   - Cont-world: [SendThen], [RecvBind], [BindSAP], [RecvLoop].
//   - Expr-world: [ExprSendThen], [ExprRecvBind], [ExprRecvLoop]. Bridge via [Reify] and [Reflect].
//
// # Integration
//
//   - Stepping: [Step] and [Advance] evaluate a protocol one effect at a time for an external event loop.
//   - Blocking: [Exec] and [ExecExpr] wait on descriptor readiness; [Run] interleaves two protocols with adaptive backoff.
//
// # Example
//
//	s, err := dlpi.Open("net0", 0)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	if _, err := s.Bind(0x4000); err != nil {
//		return err
//	}
//	src := make([]byte, dlpi.PhysAddrMax)
//	msg := make([]byte, 1500)
//	got, err := s.RecvReady(ctx, src, msg, nil)
package dlpi
