// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi_test

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"code.hybscloud.com/dlpi"
	"code.hybscloud.com/dlpi/simnet"
	"golang.org/x/sys/unix"
)

func TestMulticastRoundTrip(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.open(t, "sim1")
	if err := rx.EnableMulticast(testGroup); err != nil {
		t.Fatal(err)
	}

	if err := tx.Send(testGroup, muffin, nil); err != nil {
		t.Fatal(err)
	}
	src := make([]byte, dlpi.PhysAddrMax)
	msg := make([]byte, 1024)
	var info dlpi.RecvInfo
	got, err := rx.Recv(src, msg, time.Second, &info)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(msg[:got.MsgLen], muffin) {
		t.Fatalf("message: got %q, want %q", msg[:got.MsgLen], muffin)
	}
	if !bytes.Equal(src[:got.AddrLen], n.addr0) {
		t.Fatalf("source: got %x, want %x", src[:got.AddrLen], n.addr0)
	}
	if info.DestAddrType != dlpi.AddrGroup || !bytes.Equal(info.Dest(), testGroup) {
		t.Fatalf("destination: got %v %v", info.Dest(), info.DestAddrType)
	}
	if info.Truncated(got.MsgLen) {
		t.Fatal("complete frame reported truncated")
	}

	if err := rx.DisableMulticast(testGroup); err != nil {
		t.Fatal(err)
	}
	tx.Send(testGroup, muffin, nil)
	if _, err := rx.Recv(src, msg, dlpi.NoWait, nil); !dlpi.IsTimeout(err) {
		t.Fatalf("after disable: got %v, want timeout", err)
	}
}

func TestBindReportsSAP(t *testing.T) {
	n := newTestNet(t)
	s := n.openUnbound(t, "sim0")
	if _, ok := s.SAP(); ok {
		t.Fatal("unbound session reports a SAP")
	}
	bound, err := s.Bind(testSAP)
	if err != nil {
		t.Fatal(err)
	}
	if bound != testSAP {
		t.Fatalf("bound %#x, want %#x", bound, testSAP)
	}
	if sap, ok := s.SAP(); !ok || sap != testSAP {
		t.Fatalf("SAP: got %#x %v", sap, ok)
	}
}

func TestBindFiltersOtherSAP(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.openUnbound(t, "sim1")
	if _, err := rx.Bind(0x0806); err != nil {
		t.Fatal(err)
	}
	if err := tx.Send(n.addr1, muffin, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := rx.Recv(nil, make([]byte, 64), 20*time.Millisecond, nil); !errors.Is(err, dlpi.ErrTimedOut) {
		t.Fatalf("frame on SAP %#x reached a session bound to 0x0806: %v", testSAP, err)
	}
	if got := rx.Stats().FramesReceived; got != 0 {
		t.Fatalf("frames received: got %d, want 0", got)
	}
}

func TestBindErrors(t *testing.T) {
	n := newTestNet(t)
	s := n.openUnbound(t, "sim0")
	if _, err := s.Bind(0x10000); !errors.Is(err, dlpi.ErrUnavailSAP) {
		t.Fatalf("oversized SAP: got %v", err)
	}
	if _, ok := s.SAP(); ok {
		t.Fatal("failed bind recorded a SAP")
	}
}

func TestSendUnbound(t *testing.T) {
	n := newTestNet(t)
	s := n.openUnbound(t, "sim0")
	if err := s.Send(n.addr1, muffin, nil); !errors.Is(err, dlpi.ErrFailure) {
		t.Fatalf("got %v, want ErrFailure", err)
	}
	if s.Stats().FramesSent != 0 {
		t.Fatal("failed send counted")
	}
}

func TestSendInfoSAP(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.openUnbound(t, "sim1")
	if _, err := rx.Bind(0x0806); err != nil {
		t.Fatal(err)
	}
	info := &dlpi.SendInfo{SAP: 0x0806, Priority: dlpi.Priority{Min: 0, Max: 100}}
	if err := tx.Send(n.addr1, muffin, info); err != nil {
		t.Fatal(err)
	}
	if _, err := rx.Recv(nil, make([]byte, 64), time.Second, nil); err != nil {
		t.Fatalf("frame on the SendInfo SAP: %v", err)
	}
}

func TestRecvTruncation(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.open(t, "sim1")
	tx.Send(n.addr1, muffin, nil)

	msg := make([]byte, 6)
	var info dlpi.RecvInfo
	got, err := rx.Recv(nil, msg, time.Second, &info)
	if err != nil {
		t.Fatal(err)
	}
	if got.MsgLen != len(msg) || info.TotalLen != len(muffin) {
		t.Fatalf("got %d of %d bytes, want %d of %d", got.MsgLen, info.TotalLen, len(msg), len(muffin))
	}
	if !info.Truncated(got.MsgLen) {
		t.Fatal("truncation not reported")
	}
	if !bytes.Equal(msg, muffin[:len(msg)]) {
		t.Fatalf("prefix: got %q", msg)
	}
	if st := rx.Stats(); st.Truncated != 1 || st.FramesReceived != 1 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestRecvTimeout(t *testing.T) {
	n := newTestNet(t)
	rx := n.open(t, "sim1")
	msg := make([]byte, 8)
	if _, err := rx.Recv(nil, msg, dlpi.NoWait, nil); !errors.Is(err, dlpi.ErrTimedOut) {
		t.Fatalf("no wait: got %v", err)
	}
	start := time.Now()
	// 1.5ms rounds up to 2ms.
	if _, err := rx.Recv(nil, msg, 1500*time.Microsecond, nil); !errors.Is(err, dlpi.ErrTimedOut) {
		t.Fatalf("timed: got %v", err)
	}
	if time.Since(start) < 2*time.Millisecond {
		t.Fatal("timeout was rounded down")
	}
}

// msecRecorder records the timeout handed to the provider and reports
// ErrTimedOut without waiting.
type msecRecorder struct {
	*simnet.Fabric
	msec int
}

func (m *msecRecorder) Recv(_ dlpi.RawHandle, _, _ []byte, msec int, _ *dlpi.RecvInfo) (int, int, dlpi.Result) {
	m.msec = msec
	return 0, 0, dlpi.Result{Code: int(dlpi.CodeTimedOut)}
}

func TestRecvTimeoutMillis(t *testing.T) {
	cases := []struct {
		timeout time.Duration
		want    int
	}{
		{dlpi.Forever, -1},
		{-time.Second, -1},
		{dlpi.NoWait, 0},
		{time.Nanosecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{math.MaxInt32 * time.Millisecond, math.MaxInt32},
		{math.MaxInt32*time.Millisecond + 1, math.MaxInt32},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	}
	n := newTestNet(t)
	rec := &msecRecorder{Fabric: n.fabric}
	s := n.openUnboundWith(t, "sim1", rec)
	for _, tc := range cases {
		rec.msec = -2
		if _, err := s.Recv(nil, make([]byte, 8), tc.timeout, nil); !errors.Is(err, dlpi.ErrTimedOut) {
			t.Fatalf("%v: got %v", tc.timeout, err)
		}
		if rec.msec != tc.want {
			t.Errorf("%v: provider got %d ms, want %d", tc.timeout, rec.msec, tc.want)
		}
	}
}

func TestPromiscuous(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	snoop := n.openUnbound(t, "sim1")
	if err := snoop.PromiscOn(dlpi.PromiscPhys); err != nil {
		t.Fatal(err)
	}
	if err := snoop.PromiscOn(dlpi.PromiscSAP); err != nil {
		t.Fatal(err)
	}
	stranger := []byte{0x02, 0xee, 0, 0, 0, 9}
	tx.Send(stranger, muffin, nil)
	msg := make([]byte, 64)
	got, err := snoop.Recv(nil, msg, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(msg[:got.MsgLen], muffin) {
		t.Fatalf("snooped %q", msg[:got.MsgLen])
	}
	if err := snoop.PromiscOff(dlpi.PromiscPhys); err != nil {
		t.Fatal(err)
	}
}

func TestPromiscFailureIsEINVAL(t *testing.T) {
	n := newTestNet(t)
	s := n.openUnbound(t, "sim0")
	for name, err := range map[string]error{
		"off before on": s.PromiscOff(dlpi.PromiscMulti),
		"unknown level": s.PromiscOn(dlpi.PromiscLevel(99)),
	} {
		var se dlpi.SystemError
		if !errors.As(err, &se) || se.Errno != unix.EINVAL {
			t.Errorf("%s: got %v, want EINVAL", name, err)
		}
	}
}

func TestMulticastErrors(t *testing.T) {
	n := newTestNet(t)
	s := n.open(t, "sim0")
	if err := s.EnableMulticast(n.addr1); !errors.Is(err, dlpi.ErrInval) {
		t.Fatalf("unicast address: got %v", err)
	}
	if err := s.DisableMulticast(testGroup); !errors.Is(err, dlpi.ErrFailure) {
		t.Fatalf("disable unknown group: got %v", err)
	}
}

func TestFD(t *testing.T) {
	n := newTestNet(t)
	s := n.open(t, "sim0")
	fd, err := s.FD()
	if err != nil || fd < 0 {
		t.Fatalf("got %d %v", fd, err)
	}

	h := n.openUnboundWith(t, "sim1", noFD{n.fabric})
	var se dlpi.SystemError
	if _, err := h.FD(); !errors.As(err, &se) || se.Errno != unix.EINVAL {
		t.Fatalf("missing descriptor: got %v, want EINVAL", err)
	}
}

func TestStats(t *testing.T) {
	n := newTestNet(t)
	tx := n.open(t, "sim0")
	rx := n.open(t, "sim1")
	for range 3 {
		if err := tx.Send(n.addr1, muffin, nil); err != nil {
			t.Fatal(err)
		}
	}
	msg := make([]byte, 64)
	for range 3 {
		if _, err := rx.Recv(nil, msg, time.Second, nil); err != nil {
			t.Fatal(err)
		}
	}
	want := uint64(3 * len(muffin))
	if st := tx.Stats(); st.FramesSent != 3 || st.BytesSent != want {
		t.Fatalf("sender stats: %+v", st)
	}
	if st := rx.Stats(); st.FramesReceived != 3 || st.BytesReceived != want {
		t.Fatalf("receiver stats: %+v", st)
	}
}
