// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dlpi

import (
	"errors"
	"strconv"

	"golang.org/x/sys/unix"
)

// ProviderError is a failure reported in the provider's own code space.
// Values are comparable, so errors.Is matches against the Err* variables.
type ProviderError struct {
	Code ResultCode
}

func (e ProviderError) Error() string {
	return "dlpi: " + e.Code.String()
}

// Timeout reports whether the provider gave up waiting for a frame.
func (e ProviderError) Timeout() bool {
	return e.Code == CodeTimedOut
}

// SystemError is a generic operating system failure surfaced by the
// provider through the [SysErr] sentinel.
type SystemError struct {
	Errno unix.Errno
}

func (e SystemError) Error() string {
	return "dlpi: " + e.Errno.Error()
}

// Unwrap exposes the errno, so errors.Is(err, unix.EPERM) works.
func (e SystemError) Unwrap() error {
	return e.Errno
}

// RawError carries a result code this package does not know.
type RawError struct {
	Code int
}

func (e RawError) Error() string {
	return "dlpi: unknown result code " + strconv.Itoa(e.Code)
}

// Provider errors, one per enumerated code.
var (
	ErrInval           error = ProviderError{Code: CodeInval}
	ErrLinkNameInval   error = ProviderError{Code: CodeLinkNameInval}
	ErrNoLink          error = ProviderError{Code: CodeNoLink}
	ErrBadLink         error = ProviderError{Code: CodeBadLink}
	ErrInHandle        error = ProviderError{Code: CodeInHandle}
	ErrTimedOut        error = ProviderError{Code: CodeTimedOut}
	ErrVerNotSup       error = ProviderError{Code: CodeVerNotSup}
	ErrModeNotSup      error = ProviderError{Code: CodeModeNotSup}
	ErrUnavailSAP      error = ProviderError{Code: CodeUnavailSAP}
	ErrFailure         error = ProviderError{Code: CodeFailure}
	ErrNotStyle2       error = ProviderError{Code: CodeNotStyle2}
	ErrBadMsg          error = ProviderError{Code: CodeBadMsg}
	ErrRawNotSup       error = ProviderError{Code: CodeRawNotSup}
	ErrNoteInval       error = ProviderError{Code: CodeNoteInval}
	ErrNoteNotSup      error = ProviderError{Code: CodeNoteNotSup}
	ErrNoteIDInval     error = ProviderError{Code: CodeNoteIDInval}
	ErrIPNetInfoNotSup error = ProviderError{Code: CodeIPNetInfoNotSup}
	ErrErrMax          error = ProviderError{Code: CodeErrMax}
)

// ErrClosed is returned by operations on a session after Close.
var ErrClosed = errors.New("dlpi: session closed")

// errInvalid is what promiscuous and descriptor calls report for the
// provider's -1 failure value; they do not use the shared code space.
var errInvalid error = SystemError{Errno: unix.EINVAL}

// IsTimeout reports whether err is the provider timeout.
func IsTimeout(err error) bool {
	var pe ProviderError
	return errors.As(err, &pe) && pe.Timeout()
}
