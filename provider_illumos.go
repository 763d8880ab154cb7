// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build illumos && cgo

package dlpi

/*
#cgo LDFLAGS: -ldlpi
#include <stdlib.h>
#include <libdlpi.h>
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// libdlpi binds Provider to the system libdlpi.
type libdlpi struct{}

// System returns the provider backed by the host's libdlpi.
func System() Provider {
	return libdlpi{}
}

func (h RawHandle) c() C.dlpi_handle_t {
	return C.dlpi_handle_t(unsafe.Pointer(h))
}

// result pairs a return value with the errno cgo captured for that call.
func result(ret C.int, err error) Result {
	r := Result{Code: int(ret)}
	if errno, ok := err.(unix.Errno); ok {
		r.Errno = errno
	}
	return r
}

func bytesPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func (libdlpi) Open(linkname string, flags Flag) (RawHandle, Result) {
	// C.CString appends the terminator.
	name := C.CString(linkname)
	defer C.free(unsafe.Pointer(name))

	var dh C.dlpi_handle_t
	ret, err := C.dlpi_open(name, &dh, C.uint_t(flags))
	return RawHandle(unsafe.Pointer(dh)), result(ret, err)
}

func (libdlpi) Close(h RawHandle) {
	C.dlpi_close(h.c())
}

func (libdlpi) Send(h RawHandle, dst, msg []byte, info *SendInfo) Result {
	var sip *C.dlpi_sendinfo_t
	var si C.dlpi_sendinfo_t
	if info != nil {
		si.dsi_sap = C.uint_t(info.SAP)
		si.dsi_prio.dl_min = C.t_scalar_t(info.Priority.Min)
		si.dsi_prio.dl_max = C.t_scalar_t(info.Priority.Max)
		sip = &si
	}
	ret, err := C.dlpi_send(h.c(),
		bytesPtr(dst), C.size_t(len(dst)),
		bytesPtr(msg), C.size_t(len(msg)),
		sip)
	return result(ret, err)
}

func (libdlpi) Recv(h RawHandle, src, msg []byte, msec int, info *RecvInfo) (int, int, Result) {
	srcLen := C.size_t(len(src))
	msgLen := C.size_t(len(msg))
	var rip *C.dlpi_recvinfo_t
	var ri C.dlpi_recvinfo_t
	if info != nil {
		rip = &ri
	}
	ret, err := C.dlpi_recv(h.c(),
		bytesPtr(src), &srcLen,
		bytesPtr(msg), &msgLen,
		C.int(msec), rip)
	r := result(ret, err)
	if r.Code != int(CodeSuccess) {
		return 0, 0, r
	}
	if info != nil {
		for i := range info.DestAddr {
			info.DestAddr[i] = byte(ri.dri_destaddr[i])
		}
		info.DestAddrLen = uint8(ri.dri_destaddrlen)
		info.DestAddrType = AddrUnicast
		if ri.dri_destaddrtype == C.DLPI_ADDRTYPE_GROUP {
			info.DestAddrType = AddrGroup
		}
		info.TotalLen = int(ri.dri_totmsglen)
	}
	return int(srcLen), int(msgLen), r
}

func (libdlpi) Bind(h RawHandle, sap uint32) (uint32, Result) {
	var bound C.uint_t
	ret, err := C.dlpi_bind(h.c(), C.uint_t(sap), &bound)
	return uint32(bound), result(ret, err)
}

func (libdlpi) EnableMulticast(h RawHandle, addr []byte) Result {
	ret, err := C.dlpi_enabmulti(h.c(), bytesPtr(addr), C.size_t(len(addr)))
	return result(ret, err)
}

func (libdlpi) DisableMulticast(h RawHandle, addr []byte) Result {
	ret, err := C.dlpi_disabmulti(h.c(), bytesPtr(addr), C.size_t(len(addr)))
	return result(ret, err)
}

func (libdlpi) PromiscOn(h RawHandle, level PromiscLevel) int {
	return int(C.dlpi_promiscon(h.c(), C.uint_t(level)))
}

func (libdlpi) PromiscOff(h RawHandle, level PromiscLevel) int {
	return int(C.dlpi_promiscoff(h.c(), C.uint_t(level)))
}

func (libdlpi) FD(h RawHandle) int {
	return int(C.dlpi_fd(h.c()))
}
