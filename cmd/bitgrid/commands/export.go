package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xupit3r/bitgrid/internal/imgexport"
)

var (
	exportOpts  arrayOptions
	exportImage imageOptions
)

var exportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Write the bits of one element as an image",
	Long: `Fill a bit array with a pattern kernel and write width x height bits of
one element as a black-and-white image. Set bits are white.

The format follows the file extension (.png or .pbm). Without an extension
export.format from the config is used. Relative paths are placed in
export.dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	addArrayFlags(exportCmd, &exportOpts)
	addImageFlags(exportCmd, &exportImage)
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := exportPath(args[0])

	owner, err := buildArray(cmd.Context(), exportOpts)
	if err != nil {
		return err
	}
	defer freeArray(owner)

	err = imgexport.ExportElement(path, owner.View(), exportImage.element,
		exportImage.width, exportImage.height, exportImage.transpose)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Element %d saved to: %s\n", exportImage.element, path)
	return nil
}

// exportPath resolves the output path against the configured directory and
// format.
func exportPath(path string) string {
	if filepath.Ext(path) == "" {
		path += "." + cfg.Export.Format
	}
	if !filepath.IsAbs(path) && cfg.Export.Dir != "" {
		path = filepath.Join(cfg.Export.Dir, path)
	}
	return path
}
