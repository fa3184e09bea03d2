package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/xupit3r/bitgrid/internal/bitarray"
	"github.com/xupit3r/bitgrid/internal/imgexport"
)

var (
	showOpts  arrayOptions
	showImage imageOptions
)

// imageOptions select which element is drawn and its geometry
type imageOptions struct {
	element   int
	width     int
	height    int
	transpose bool
}

func addImageFlags(cmd *cobra.Command, o *imageOptions) {
	cmd.Flags().IntVarP(&o.element, "element", "e", 0, "element to draw")
	cmd.Flags().IntVar(&o.width, "width", 8, "image width in bits")
	cmd.Flags().IntVar(&o.height, "height", 8, "image height in bits")
	cmd.Flags().BoolVarP(&o.transpose, "transpose", "t", false, "read bits in column-major order")
}

var (
	setStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	clearStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Draw the bits of one element as a grid",
	Long: `Fill a bit array with a pattern kernel and draw width x height bits of
one element in the terminal, row by row (or column by column with
--transpose).`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	addArrayFlags(showCmd, &showOpts)
	addImageFlags(showCmd, &showImage)
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	owner, err := buildArray(cmd.Context(), showOpts)
	if err != nil {
		return err
	}
	defer freeArray(owner)

	grid, err := renderGrid(owner.View(), showImage)
	if err != nil {
		return err
	}

	title := titleStyle.Render(fmt.Sprintf("element %d (%dx%d)", showImage.element, showImage.width, showImage.height))
	fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinVertical(lipgloss.Left, title, frameStyle.Render(grid)))
	return nil
}

// renderGrid draws the element through the same bit ordering used for
// image export.
func renderGrid(view bitarray.View, o imageOptions) (string, error) {
	img, err := imgexport.Render(view, o.element, o.width, o.height, o.transpose)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for y := 0; y < o.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < o.width; x++ {
			if img.GrayAt(x, y).Y != 0 {
				sb.WriteString(setStyle.Render("█"))
			} else {
				sb.WriteString(clearStyle.Render("·"))
			}
		}
	}
	return sb.String(), nil
}
