//go:build !darwin || !cgo

package gpu

import "errors"

var errNoMetal = errors.New("metal requires macOS with cgo enabled")

// MetalDevice is unavailable in this build.
type MetalDevice struct{}

// NewMetalDevice always fails in this build.
func NewMetalDevice() (*MetalDevice, error) { return nil, errNoMetal }

func (d *MetalDevice) Type() DeviceType                       { return DeviceTypeGPU }
func (d *MetalDevice) Name() string                           { return "Metal (unavailable)" }
func (d *MetalDevice) Allocate(size int64) (Buffer, error)    { return nil, errNoMetal }
func (d *MetalDevice) Copy(dst, src Buffer, size int64) error { return errNoMetal }
func (d *MetalDevice) Sync() error                            { return errNoMetal }
func (d *MetalDevice) Free() error                            { return nil }
func (d *MetalDevice) MemoryUsage() (int64, int64)            { return 0, 0 }
