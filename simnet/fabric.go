// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package simnet is an in-memory datalink fabric implementing
// [dlpi.Provider]. Every link added to a Fabric sits on one shared
// broadcast segment.
//
// Each open handle has a bounded receive ring and a pipe descriptor that
// is readable while frames are queued, so readiness-driven receives work
// the same way they do against a real provider.
package simnet

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/dlpi"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var (
	// ErrLinkExists is returned by AddLink for a name already on the fabric.
	ErrLinkExists = errors.New("simnet: link already exists")
	// ErrLinkName is returned by AddLink for a name libdlpi would reject.
	ErrLinkName = errors.New("simnet: invalid link name")
	// ErrLinkAddr is returned by AddLink for an address that is not a
	// 6-byte unicast MAC.
	ErrLinkAddr = errors.New("simnet: link address must be a 6-byte unicast address")
)

// maxLinkName mirrors MAXLINKNAMELEN less the terminator.
const maxLinkName = 31

var broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// Fabric is a set of simulated links and the handles opened on them.
// It is safe for concurrent use.
type Fabric struct {
	log   *zap.Logger
	depth int
	mtu   int

	mu      sync.Mutex
	links   map[string]*netLink
	handles map[dlpi.RawHandle]*handle
	next    dlpi.RawHandle

	doubleCloses atomix.Uint64
	dropped      atomix.Uint64
}

type netLink struct {
	name  string
	addr  net.HardwareAddr
	mtu   int
	opens int
	excl  bool
}

// New returns an empty fabric.
func New(opts ...Option) *Fabric {
	o := options{logger: zap.NewNop(), depth: DefaultQueueDepth, mtu: DefaultMTU}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fabric{
		log:     o.logger,
		depth:   o.depth,
		mtu:     o.mtu,
		links:   make(map[string]*netLink),
		handles: make(map[dlpi.RawHandle]*handle),
	}
}

// AddLink attaches a link named name to the segment. A nil addr assigns
// a locally administered address. The address in use is returned.
func (f *Fabric) AddLink(name string, addr net.HardwareAddr) (net.HardwareAddr, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrLinkName, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrLinkExists, name)
	}
	if addr == nil {
		n := len(f.links) + 1
		addr = net.HardwareAddr{0x02, 0, 0, 0, byte(n >> 8), byte(n)}
	}
	if len(addr) != 6 || addr[0]&1 != 0 {
		return nil, ErrLinkAddr
	}
	addr = append(net.HardwareAddr(nil), addr...)
	f.links[name] = &netLink{name: name, addr: addr, mtu: f.mtu}
	f.log.Debug("link added", zap.String("link", name), zap.Stringer("addr", addr))
	return addr, nil
}

// Addr returns the address of the link named name.
func (f *Fabric) Addr(name string) (net.HardwareAddr, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[name]
	if !ok {
		return nil, false
	}
	return l.addr, true
}

// OpenHandles returns the number of handles not yet closed.
func (f *Fabric) OpenHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}

// DoubleCloses counts Close calls on handles that were not open.
func (f *Fabric) DoubleCloses() uint64 {
	return f.doubleCloses.Load()
}

// Dropped counts frames lost to full receive rings.
func (f *Fabric) Dropped() uint64 {
	return f.dropped.Load()
}

func (f *Fabric) lookup(h dlpi.RawHandle) *handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handles[h]
}

// validName accepts illumos link names: a letter first, a digit last,
// letters, digits, '_' and '.' between.
func validName(name string) bool {
	if len(name) < 2 || len(name) > maxLinkName {
		return false
	}
	if !isLetter(name[0]) || !isDigit(name[len(name)-1]) {
		return false
	}
	for i := 1; i < len(name)-1; i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' && c != '.' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

func provider(code dlpi.ResultCode) dlpi.Result {
	return dlpi.Result{Code: int(code)}
}

func system(errno unix.Errno) dlpi.Result {
	return dlpi.Result{Code: dlpi.SysErr, Errno: errno}
}
