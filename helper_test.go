// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi_test

import (
	"net"
	"testing"

	"code.hybscloud.com/dlpi"
	"code.hybscloud.com/dlpi/simnet"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

const testSAP = 0x4000

var (
	muffin    = []byte("do you know the muffin man?")
	testGroup = []byte{0xff, 0xff, 0x00, 0x00, 0x00, 0x47}
)

// testNet is a two-link segment, sim0 and sim1.
type testNet struct {
	fabric *simnet.Fabric
	addr0  net.HardwareAddr
	addr1  net.HardwareAddr
}

func newTestNet(tb testing.TB, opts ...simnet.Option) *testNet {
	tb.Helper()
	f := simnet.New(opts...)
	a0, err := f.AddLink("sim0", nil)
	if err != nil {
		tb.Fatal(err)
	}
	a1, err := f.AddLink("sim1", nil)
	if err != nil {
		tb.Fatal(err)
	}
	return &testNet{fabric: f, addr0: a0, addr1: a1}
}

// openUnbound opens name and closes it at cleanup.
func (n *testNet) openUnbound(tb testing.TB, name string) *dlpi.Session {
	tb.Helper()
	s, err := dlpi.Open(name, 0, dlpi.WithProvider(n.fabric))
	if err != nil {
		tb.Fatalf("open %s: %v", name, err)
	}
	tb.Cleanup(func() { s.Close() })
	return s
}

// open opens name bound to testSAP.
func (n *testNet) open(tb testing.TB, name string) *dlpi.Session {
	tb.Helper()
	s := n.openUnbound(tb, name)
	if _, err := s.Bind(testSAP); err != nil {
		tb.Fatalf("bind %s: %v", name, err)
	}
	return s
}

// noFD hides the fabric's readiness descriptors.
type noFD struct {
	*simnet.Fabric
}

func (noFD) FD(dlpi.RawHandle) int { return -1 }

// execExpr drives protocol to completion on r via Step+Advance, retrying
// on iox.ErrWouldBlock. Used by stepping tests to exercise the
// non-blocking path.
func execExpr[R any](r dlpi.Ref, protocol kont.Expr[R]) (R, error) {
	result, susp := dlpi.Step(protocol)
	for susp != nil {
		var err error
		result, susp, err = dlpi.Advance(r, susp)
		if iox.IsWouldBlock(err) {
			continue
		}
		if err != nil {
			susp.Discard()
			return result, err
		}
	}
	return result, nil
}

// openUnboundWith opens name through p and closes it at cleanup.
func (n *testNet) openUnboundWith(tb testing.TB, name string, p dlpi.Provider) *dlpi.Session {
	tb.Helper()
	s, err := dlpi.Open(name, 0, dlpi.WithProvider(p))
	if err != nil {
		tb.Fatalf("open %s: %v", name, err)
	}
	tb.Cleanup(func() { s.Close() })
	return s
}
