//go:build windows
// +build windows

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
	"syscall"
	"unsafe"
)

// https://learn.microsoft.com/en-us/windows/win32/api/sysinfoapi/ns-sysinfoapi-memorystatusex
type memStatusEx struct {
	dwLength     uint32
	dwMemoryLoad uint32
	ullTotalPhys uint64
	ullAvailPhys uint64
	unused       [5]uint64
}

func memoryStatus() (*memStatusEx, error) {
	kernel32, err := syscall.LoadDLL("kernel32.dll")
	if err != nil {
		return nil, err
	}
	proc, err := kernel32.FindProc("GlobalMemoryStatusEx")
	if err != nil {
		return nil, err
	}
	msx := &memStatusEx{dwLength: 64}
	if r, _, _ := proc.Call(uintptr(unsafe.Pointer(msx))); r == 0 {
		return nil, syscall.EINVAL
	}
	return msx, nil
}

// Size returns the total memory of the system in bytes.
func Size() (uint64, error) {
	msx, err := memoryStatus()
	if err != nil {
		return 0, err
	}
	return msx.ullTotalPhys, nil
}

// Free returns the free memory of the system in bytes.
func Free() (uint64, error) {
	msx, err := memoryStatus()
	if err != nil {
		return 0, err
	}
	return msx.ullAvailPhys, nil
}
