// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// PhysAddrMax is the largest physical address a provider reports.
// Source buffers passed to receive operations should be this long.
const PhysAddrMax = 64

// ResultCode is a provider-specific result in the libdlpi code space.
type ResultCode int

// Result codes, in provider order. CodeErrMax is one past the last
// code the provider documents.
const (
	CodeSuccess ResultCode = 10000 + iota
	CodeInval
	CodeLinkNameInval
	CodeNoLink
	CodeBadLink
	CodeInHandle
	CodeTimedOut
	CodeVerNotSup
	CodeModeNotSup
	CodeUnavailSAP
	CodeFailure
	CodeNotStyle2
	CodeBadMsg
	CodeRawNotSup
	CodeNoteInval
	CodeNoteNotSup
	CodeNoteIDInval
	CodeIPNetInfoNotSup
	CodeErrMax
)

// SysErr is the code a provider returns when the failure is a generic
// operating system error rather than one of its own codes. The errno is
// reported alongside it in [Result].
const SysErr = 4

var codeText = [...]string{
	CodeSuccess - CodeSuccess:         "success",
	CodeInval - CodeSuccess:           "invalid argument",
	CodeLinkNameInval - CodeSuccess:   "invalid link name",
	CodeNoLink - CodeSuccess:          "link does not exist",
	CodeBadLink - CodeSuccess:         "bad link",
	CodeInHandle - CodeSuccess:        "invalid handle",
	CodeTimedOut - CodeSuccess:        "operation timed out",
	CodeVerNotSup - CodeSuccess:       "unsupported version",
	CodeModeNotSup - CodeSuccess:      "unsupported connection mode",
	CodeUnavailSAP - CodeSuccess:      "unavailable service access point",
	CodeFailure - CodeSuccess:         "failure",
	CodeNotStyle2 - CodeSuccess:       "style-2 node reports style-1",
	CodeBadMsg - CodeSuccess:          "bad message",
	CodeRawNotSup - CodeSuccess:       "raw mode not supported",
	CodeNoteInval - CodeSuccess:       "invalid notification type",
	CodeNoteNotSup - CodeSuccess:      "notification not supported by link",
	CodeNoteIDInval - CodeSuccess:     "invalid notification id",
	CodeIPNetInfoNotSup - CodeSuccess: "ipnetinfo not supported",
	CodeErrMax - CodeSuccess:          "error max",
}

// known reports whether c is one of the enumerated codes.
func (c ResultCode) known() bool {
	return c >= CodeSuccess && c <= CodeErrMax
}

func (c ResultCode) String() string {
	if c.known() {
		return codeText[c-CodeSuccess]
	}
	return "result code " + strconv.Itoa(int(c))
}

// Result is what one provider primitive reports. Errno is meaningful only
// when Code is [SysErr]; providers capture it at the call site because the
// thread-local errno does not survive a goroutine switch.
type Result struct {
	Code  int
	Errno unix.Errno
}

// OK is the success result.
var OK = Result{Code: int(CodeSuccess)}

// Err decodes r into nil or exactly one of [ProviderError], [SystemError]
// or [RawError].
//
// The order is fixed: success, then the system-error sentinel, then the
// enumerated codes, then the raw fallback. The sentinel is tested before
// enum decoding so that it is never reported as a provider code.
func (r Result) Err() error {
	if r.Code == int(CodeSuccess) {
		return nil
	}
	if r.Code == SysErr {
		return SystemError{Errno: r.Errno}
	}
	if c := ResultCode(r.Code); c.known() {
		return ProviderError{Code: c}
	}
	return RawError{Code: r.Code}
}

// Flag modifies how [Open] attaches to a link.
type Flag uint32

// Open flags.
const (
	Excl       Flag = 0x0001 // exclusive open
	Passive    Flag = 0x0002 // passive mode
	Raw        Flag = 0x0004 // raw mode
	SerialLine Flag = 0x0008 // synchronous serial line interface
	NoAttach   Flag = 0x0010 // do not attach PPA
	Native     Flag = 0x0020 // native mode
	DevOnly    Flag = 0x0040 // open under /dev only
	DevIPNet   Flag = 0x0080 // open IP link under /dev/ipnet
	IPNetInfo  Flag = 0x0100 // request ipnetinfo headers
)

// PromiscLevel selects what promiscuous mode captures.
type PromiscLevel uint32

// Promiscuous levels.
const (
	PromiscPhys   PromiscLevel = 0x01
	PromiscSAP    PromiscLevel = 0x02
	PromiscMulti  PromiscLevel = 0x03
	PromiscRxOnly PromiscLevel = 0x04
)
