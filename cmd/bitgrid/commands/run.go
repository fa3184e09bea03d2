package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xupit3r/bitgrid/internal/bitarray"
)

var (
	runOpts  arrayOptions
	runLimit int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill a bit array with a kernel and print its elements",
	Long: `Allocate a bit array on the selected device, fill it with a pattern
kernel and print every element as an integer.

Examples:
  bitgrid run -n 8 -b 5 --pattern index
  bitgrid run -n 1024 -b 16 --pattern gray --per-bit --limit 4`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addArrayFlags(runCmd, &runOpts)
	runCmd.Flags().IntVar(&runLimit, "limit", 16, "maximum number of elements to print (0 = all)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	owner, err := buildArray(cmd.Context(), runOpts)
	if err != nil {
		return err
	}
	defer freeArray(owner)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d elements x %d bits (%d bytes) on %s\n\n",
		owner.ElementCount(), owner.BitsPerElement(), owner.SizeBytes(), owner.Device().Name())

	return printElements(out, owner.View(), runLimit)
}

// printElements writes one line per element: index, integer value and bits
// (most significant first).
func printElements(out io.Writer, view bitarray.View, limit int) error {
	n := view.ElementCount()
	if limit > 0 && limit < n {
		n = limit
	}

	for elem := 0; elem < n; elem++ {
		value, err := view.ToIntegerChecked(elem)
		switch {
		case errors.Is(err, bitarray.ErrElementTooWide):
			fmt.Fprintf(out, "%6d  %-20x  %s\n", elem, reversed(view.ElementBytes(elem)), bitString(view, elem))
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "%6d  %-20d  %s\n", elem, value, bitString(view, elem))
		}
	}

	if n < view.ElementCount() {
		fmt.Fprintf(out, "... %d more\n", view.ElementCount()-n)
	}
	return nil
}

func bitString(view bitarray.View, elem int) string {
	var sb strings.Builder
	for pos := view.BitsPerElement() - 1; pos >= 0; pos-- {
		if view.GetBit(pos, elem) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		if pos > 0 && pos%view.ByteWidth() == 0 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// reversed returns b with the most significant byte first.
func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
