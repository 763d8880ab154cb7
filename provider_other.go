// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !(illumos && cgo)

package dlpi

import "golang.org/x/sys/unix"

// unsupported stands in for libdlpi where it does not exist.
// Open fails with ENOTSUP; no handle is ever produced.
type unsupported struct{}

// System returns the provider backed by the host's libdlpi. Without
// libdlpi every Open fails with ENOTSUP.
func System() Provider {
	return unsupported{}
}

var errNotSupported = Result{Code: SysErr, Errno: unix.ENOTSUP}

func (unsupported) Open(string, Flag) (RawHandle, Result) {
	return 0, errNotSupported
}

func (unsupported) Close(RawHandle) {}

func (unsupported) Send(RawHandle, []byte, []byte, *SendInfo) Result {
	return errNotSupported
}

func (unsupported) Recv(RawHandle, []byte, []byte, int, *RecvInfo) (int, int, Result) {
	return 0, 0, errNotSupported
}

func (unsupported) Bind(RawHandle, uint32) (uint32, Result) {
	return 0, errNotSupported
}

func (unsupported) EnableMulticast(RawHandle, []byte) Result {
	return errNotSupported
}

func (unsupported) DisableMulticast(RawHandle, []byte) Result {
	return errNotSupported
}

func (unsupported) PromiscOn(RawHandle, PromiscLevel) int {
	return -1
}

func (unsupported) PromiscOff(RawHandle, PromiscLevel) int {
	return -1
}

func (unsupported) FD(RawHandle) int {
	return -1
}
