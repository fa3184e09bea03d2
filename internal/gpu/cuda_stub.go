//go:build !linux || !cgo

package gpu

import "errors"

var errNoCUDA = errors.New("cuda requires Linux with cgo enabled")

// CUDADevice is unavailable in this build.
type CUDADevice struct{}

// NewCUDADevice always fails in this build.
func NewCUDADevice() (*CUDADevice, error) { return nil, errNoCUDA }

func (d *CUDADevice) Type() DeviceType                       { return DeviceTypeGPU }
func (d *CUDADevice) Name() string                           { return "CUDA (unavailable)" }
func (d *CUDADevice) Allocate(size int64) (Buffer, error)    { return nil, errNoCUDA }
func (d *CUDADevice) Copy(dst, src Buffer, size int64) error { return errNoCUDA }
func (d *CUDADevice) Sync() error                            { return errNoCUDA }
func (d *CUDADevice) Free() error                            { return nil }
func (d *CUDADevice) MemoryUsage() (int64, int64)            { return 0, 0 }
