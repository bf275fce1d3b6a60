package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/export"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/statecache"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		sourceType string
		output     string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Export a graph snapshot as SVG or DOT",
		Long: `Export a snapshot of a graph as SVG or Graphviz DOT.

The snapshot reflects the view state persisted for this source: collapsed
groups are folded, and saved positions are included as layout hints.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor := ""
			if len(args) > 0 {
				descriptor = args[0]
			}
			if format != "svg" && format != "dot" {
				return fmt.Errorf("unsupported format %q: use svg or dot", format)
			}
			return c.runExport(cmd.Context(), sourceType, descriptor, output, format)
		},
	}

	cmd.Flags().StringVarP(&sourceType, "type", "t", "", "source type: file (default), mongo")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <source>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), dot")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, sourceType, descriptor, output, format string) error {
	s, err := c.newSession(sourceType, descriptor)
	if err != nil {
		return err
	}
	defer s.Close()

	cv := canvas.NewMemory()
	reloader := graphsync.NewReloader(s.engine, cv, c.Logger)
	persisted := statecache.Read(s.states, ctx, s.stateKey(), viewstate.Decode, viewstate.Empty)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s...", s.descriptor))
	spinner.Start()

	if err := reloader.Reload(ctx, s.load, persisted); err != nil {
		spinner.StopWithError("Export failed")
		return err
	}

	dot := export.ToDOT(cv)
	data := []byte(dot)
	if format == "svg" {
		data, err = export.RenderSVG(dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render SVG: %w", err)
		}
	}
	spinner.Stop()

	path := output
	if path == "" {
		path = defaultExportPath(s.descriptor, format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Exported %s snapshot", format)
	printFile(path)
	return nil
}

// defaultExportPath derives an output file name from the source descriptor.
func defaultExportPath(descriptor, format string) string {
	base := filepath.Base(descriptor)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "graph"
	}
	return base + "." + format
}
