//go:build darwin
// +build darwin

// MIT License
//
// Copyright (c) 2023-2026 Theater Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package memory

import (
	"os/exec"
	"regexp"
	"strconv"
	"syscall"
)

// Size returns the total memory of the system in bytes.
func Size() (uint64, error) {
	return syscall.SysctlUint64("hw.memsize")
}

var (
	pageSizeRegex  = regexp.MustCompile(`page size of ([0-9]*) bytes`)
	freePagesRegex = regexp.MustCompile(`Pages free: *([0-9]*)\.`)
)

// Free returns the free memory of the system in bytes.
// There is no sysctl for it, so vm_stat output is parsed instead.
func Free() (uint64, error) {
	out, err := exec.Command("vm_stat").Output()
	if err != nil {
		return 0, err
	}

	pageSize := uint64(4096)
	if matches := pageSizeRegex.FindSubmatch(out); len(matches) == 2 {
		pageSize, err = strconv.ParseUint(string(matches[1]), 10, 64)
		if err != nil {
			return 0, err
		}
	}

	freePages := uint64(0)
	if matches := freePagesRegex.FindSubmatch(out); len(matches) == 2 {
		freePages, err = strconv.ParseUint(string(matches[1]), 10, 64)
		if err != nil {
			return 0, err
		}
	}
	return freePages * pageSize, nil
}
