package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xupit3r/bitgrid/internal/bitarray"
	"github.com/xupit3r/bitgrid/internal/gpu"
	"github.com/xupit3r/bitgrid/internal/kernel"
	"github.com/xupit3r/bitgrid/internal/logging"
)

// arrayOptions are the flags shared by commands that build and fill an array
type arrayOptions struct {
	elements int
	bits     int
	pattern  string
	perBit   bool
}

func addArrayFlags(cmd *cobra.Command, o *arrayOptions) {
	cmd.Flags().IntVarP(&o.elements, "elements", "n", 0, "number of elements (default from config)")
	cmd.Flags().IntVarP(&o.bits, "bits", "b", 0, "bits per element, rounded up to whole bytes (default from config)")
	cmd.Flags().StringVarP(&o.pattern, "pattern", "p", "index", "fill pattern: "+strings.Join(patternNames(), ", "))
	cmd.Flags().BoolVar(&o.perBit, "per-bit", false, "launch one thread per bit using atomic writes")

	cmd.RegisterFlagCompletionFunc("pattern", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return patternNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// openDevice opens the device named by the --device value.
var openDevice = GetDeviceFromFlag

// buildArray opens the configured device, allocates an array on it and
// fills it. The caller releases both with freeArray.
func buildArray(ctx context.Context, o arrayOptions) (*bitarray.Owner, error) {
	if o.elements == 0 {
		o.elements = cfg.Array.Elements
	}
	if o.bits == 0 {
		o.bits = cfg.Array.BitsPerElement
	}

	p, err := lookupPattern(o.pattern)
	if err != nil {
		return nil, err
	}

	dev, err := openDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	owner, err := bitarray.New(dev, o.elements, o.bits)
	if err != nil {
		freeDevice(dev)
		return nil, err
	}

	l := kernel.NewLauncher(cfg.Launch.Workers)
	logging.Debugf("filling %d x %d-bit array with %q on %d workers",
		owner.ElementCount(), owner.BitsPerElement(), o.pattern, l.Workers())

	if err := fill(ctx, l, owner.View(), p, o.perBit || cfg.Array.Atomic); err != nil {
		logging.Errorf("fill kernel stopped: %v", err)
		freeArray(owner)
		return nil, err
	}
	return owner, nil
}

// freeArray releases owner and then its device, logging instead of failing
// the command.
func freeArray(owner *bitarray.Owner) {
	dev := owner.Device()
	if err := owner.Free(); err != nil {
		logging.Warnf("releasing bit array: %v", err)
	}
	freeDevice(dev)
}

func freeDevice(dev gpu.Device) {
	if err := dev.Free(); err != nil {
		logging.Warnf("releasing device %s: %v", dev.Name(), err)
	}
}
