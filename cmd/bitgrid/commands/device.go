package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/xupit3r/bitgrid/internal/gpu"
	"github.com/xupit3r/bitgrid/internal/system"
)

var deviceInfoCmd = &cobra.Command{
	Use:   "device",
	Short: "Show device information",
	Long: `Display information about the compute device bit arrays are allocated on.

This command shows which device (CPU, Metal, CUDA) is selected and how much
memory it has.`,
	RunE: runDeviceInfo,
}

func init() {
	rootCmd.AddCommand(deviceInfoCmd)
}

func runDeviceInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Device Flag: %s\n\n", cfg.Device)

	dev, err := openDevice(cfg.Device)
	if err != nil {
		fmt.Fprintf(out, "Device Error: %v\n\n", err)

		fmt.Fprintln(out, "Available devices:")
		for _, line := range deviceHelp() {
			fmt.Fprintf(out, "  %s\n", line)
		}
		fmt.Fprintln(out)

		return err
	}
	defer freeDevice(dev)

	fmt.Fprintf(out, "Device: %s\n", GetDeviceName(dev))
	fmt.Fprintf(out, "   Type: %s\n", dev.Type())
	fmt.Fprintf(out, "   Platform: %s/%s\n\n", runtime.GOOS, runtime.GOARCH)

	used, total := dev.MemoryUsage()
	if total > 0 {
		fmt.Fprintln(out, "Memory:")
		fmt.Fprintf(out, "   Used: %s / %s (%.1f%%)\n",
			system.FormatBytes(used), system.FormatBytes(total), float64(used)/float64(total)*100)
		fmt.Fprintf(out, "   Free: %s\n\n", system.FormatBytes(total-used))
	}

	if dev.Type() == gpu.DeviceTypeGPU {
		if ram, err := system.GetRAMInfo(); err == nil {
			fmt.Fprintf(out, "Host RAM: %s available of %s\n", system.FormatBytes(ram.AvailableBytes), system.FormatBytes(ram.TotalBytes))
		}
	}
	fmt.Fprintf(out, "CPUs: %d\n", runtime.NumCPU())

	return nil
}
