// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !(illumos && cgo)

package dlpi_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/dlpi"
	"golang.org/x/sys/unix"
)

func TestSystemUnsupported(t *testing.T) {
	s, err := dlpi.Open("net0", 0)
	if s != nil || !errors.Is(err, unix.ENOTSUP) {
		t.Fatalf("got %v %v, want ENOTSUP", s, err)
	}
}
