// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/dlpi"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

func TestStepAdvanceSendRecv(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.open(t, "sim1")
	msg := make([]byte, 64)

	client := dlpi.ExprSendThen(n.addr1, muffin, kont.ExprReturn("sent"))
	server := dlpi.ExprRecvBind(nil, msg, func(got dlpi.Received) kont.Expr[string] {
		return kont.ExprReturn(string(msg[:got.MsgLen]))
	})

	clientResult, err := execExpr(tx.Ref, client)
	if err != nil {
		t.Fatal(err)
	}
	serverResult, err := execExpr(rx.Ref, server)
	if err != nil {
		t.Fatal(err)
	}
	if clientResult != "sent" {
		t.Fatalf("client got %q, want %q", clientResult, "sent")
	}
	if serverResult != string(muffin) {
		t.Fatalf("server got %q, want %q", serverResult, muffin)
	}
}

func TestStepInspectOperations(t *testing.T) {
	n := newTestNet(t)
	protocol := dlpi.ExprSendThen(n.addr1, muffin, kont.ExprReturn(struct{}{}))

	_, susp := dlpi.Step(protocol)
	if susp == nil {
		t.Fatal("expected suspension for Send")
	}
	op, ok := susp.Op().(dlpi.Send)
	if !ok {
		t.Fatalf("expected Send, got %T", susp.Op())
	}
	if string(op.Msg) != string(muffin) {
		t.Fatalf("Send carries %q", op.Msg)
	}
	susp.Discard()
}

func TestStepPure(t *testing.T) {
	result, susp := dlpi.Step(kont.ExprReturn(7))
	if susp != nil || result != 7 {
		t.Fatalf("got %d %v, want completion with 7", result, susp)
	}
}

func TestAdvanceWouldBlock(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.open(t, "sim1")
	msg := make([]byte, 64)
	protocol := dlpi.ExprRecvBind(nil, msg, func(got dlpi.Received) kont.Expr[int] {
		return kont.ExprReturn(got.MsgLen)
	})

	_, susp := dlpi.Step(protocol)
	_, next, err := dlpi.Advance(rx.Ref, susp)
	if !iox.IsWouldBlock(err) {
		t.Fatalf("empty link: got %v, want ErrWouldBlock", err)
	}
	if next != susp {
		t.Fatal("would-block consumed the suspension")
	}

	tx.Send(n.addr1, muffin, nil)
	result, next, err := dlpi.Advance(rx.Ref, next)
	if err != nil {
		t.Fatal(err)
	}
	if next != nil || result != len(muffin) {
		t.Fatalf("got %d %v, want completion with %d", result, next, len(muffin))
	}
}

func TestAdvanceClosed(t *testing.T) {
	n := newTestNet(t)
	rx := n.open(t, "sim1")
	_, susp := dlpi.Step(dlpi.ExprRecvBind(nil, nil, func(dlpi.Received) kont.Expr[struct{}] {
		return kont.ExprReturn(struct{}{})
	}))
	rx.Close()
	_, next, err := dlpi.Advance(rx.Ref, susp)
	if !errors.Is(err, dlpi.ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
	if next == nil {
		t.Fatal("failed advance dropped the suspension")
	}
	next.Discard()
}

func TestAdvanceBind(t *testing.T) {
	n := newTestNet(t)
	s := n.openUnbound(t, "sim0")
	protocol := kont.Reify(dlpi.BindSAP(testSAP, func(sap uint32) kont.Eff[uint32] {
		return kont.Pure(sap)
	}))
	got, err := execExpr(s.Ref, protocol)
	if err != nil {
		t.Fatal(err)
	}
	if got != testSAP {
		t.Fatalf("bound %#x, want %#x", got, testSAP)
	}
}

func TestAdvanceForeignEffectPanics(t *testing.T) {
	n := newTestNet(t)
	s := n.open(t, "sim0")
	_, susp := dlpi.Step(kont.ExprThrowError[error, int](errors.New("x")))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a non-link effect")
		}
	}()
	dlpi.Advance(s.Ref, susp)
}
