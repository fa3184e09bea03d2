package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/xupit3r/bitgrid/internal/gpu"
)

// deviceHelp lists the accepted --device values for the current platform.
func deviceHelp() []string {
	help := []string{
		"auto  - Auto-detect best device",
		"cpu   - Host memory",
	}
	switch runtime.GOOS {
	case "darwin":
		help = append(help, "gpu   - Metal shared memory", "metal - Metal GPU")
	case "linux":
		help = append(help, "gpu   - CUDA managed memory", "cuda  - CUDA GPU (requires NVIDIA driver and CUDA Toolkit)")
	}
	return help
}

// GetDeviceFromFlag opens the device named by a --device value. Bit arrays
// need host-addressable memory, which every device returned here provides.
func GetDeviceFromFlag(deviceFlag string) (gpu.Device, error) {
	name := strings.ToLower(strings.TrimSpace(deviceFlag))

	var (
		dev gpu.Device
		err error
	)
	switch name {
	case "", "auto":
		return gpu.GetDefaultDevice()
	case "cpu":
		return gpu.NewCPUDevice(), nil
	case "gpu":
		dev, err = gpu.GetDevice(gpu.DeviceTypeGPU)
	case "metal":
		if runtime.GOOS != "darwin" {
			return nil, fmt.Errorf("metal is only available on macOS")
		}
		dev, err = gpu.NewMetalDevice()
	case "cuda":
		if runtime.GOOS != "linux" {
			return nil, fmt.Errorf("cuda is only available on Linux")
		}
		dev, err = gpu.NewCUDADevice()
	default:
		return nil, fmt.Errorf("unknown device %q (valid: auto, cpu, gpu, metal, cuda)", deviceFlag)
	}

	if err != nil {
		return nil, fmt.Errorf("%s device unavailable: %w\nUse --device cpu to allocate in host memory", name, err)
	}
	return dev, nil
}

// GetDeviceName describes dev for display.
func GetDeviceName(dev gpu.Device) string {
	if dev.Type() == gpu.DeviceTypeCPU {
		return dev.Name() + " (host memory)"
	}
	switch dev.(type) {
	case *gpu.MetalDevice:
		return dev.Name() + " (Metal, shared storage)"
	case *gpu.CUDADevice:
		return dev.Name() + " (CUDA, managed memory)"
	}
	return dev.Name() + " (GPU)"
}
