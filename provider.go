// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import "net"

// RawHandle is a provider's opaque reference to one open link instance.
// It carries no ownership; [Session] owns it.
type RawHandle uintptr

// Provider is the datalink packet provider sessions run against.
//
// Every primitive is a direct blocking call. Result codes share one space
// (see [Result]) except PromiscOn/PromiscOff, which return -1 on failure,
// and FD, which returns the descriptor or -1. Implementations must allow
// one handle to be used from several goroutines at once; Close is called
// at most once per successfully opened handle.
type Provider interface {
	Open(linkname string, flags Flag) (RawHandle, Result)
	Close(h RawHandle)
	Send(h RawHandle, dst, msg []byte, info *SendInfo) Result
	// Recv fills src and msg and reports how many bytes of each were
	// written. msec < 0 blocks, 0 polls, > 0 waits up to msec.
	Recv(h RawHandle, src, msg []byte, msec int, info *RecvInfo) (srcN, msgN int, r Result)
	Bind(h RawHandle, sap uint32) (bound uint32, r Result)
	EnableMulticast(h RawHandle, addr []byte) Result
	DisableMulticast(h RawHandle, addr []byte) Result
	PromiscOn(h RawHandle, level PromiscLevel) int
	PromiscOff(h RawHandle, level PromiscLevel) int
	FD(h RawHandle) int
}

// Priority is a traffic priority range; 0 is the highest, 100 the lowest.
type Priority struct {
	Min, Max int32
}

// SendInfo overrides the bound SAP and priority for one send.
type SendInfo struct {
	SAP      uint32
	Priority Priority
}

// AddrType classifies a destination address.
type AddrType uint8

const (
	AddrUnicast AddrType = iota
	AddrGroup
)

func (t AddrType) String() string {
	if t == AddrGroup {
		return "group"
	}
	return "unicast"
}

// RecvInfo describes a received frame.
//
// TotalLen is the length of the frame as it arrived. When it exceeds the
// message count of the receive, the frame was truncated to fit the buffer.
type RecvInfo struct {
	DestAddr     [PhysAddrMax]byte
	DestAddrLen  uint8
	DestAddrType AddrType
	TotalLen     int
}

// Dest returns the destination address of the frame.
func (ri *RecvInfo) Dest() net.HardwareAddr {
	return net.HardwareAddr(ri.DestAddr[:ri.DestAddrLen])
}

// Truncated reports whether a receive that wrote n message bytes lost data.
func (ri *RecvInfo) Truncated(n int) bool {
	return ri.TotalLen > n
}
