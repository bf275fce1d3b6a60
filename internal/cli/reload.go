package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// reloadCommand creates the reload command for checking a data source.
func (c *CLI) reloadCommand() *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "reload [source]",
		Short: "Fetch a data source and report what it contains",
		Long: `Fetch a data source, run a full synchronization against a scratch
canvas, and report the result.

This validates that the source is reachable and structurally sound (no parent
cycles, no empty identifiers) without touching any persisted view state. Use
it to check a source before pointing a long-lived viewer or server at it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor := ""
			if len(args) > 0 {
				descriptor = args[0]
			}
			return c.runReload(cmd.Context(), sourceType, descriptor)
		},
	}

	cmd.Flags().StringVarP(&sourceType, "type", "t", "", "source type: file (default), mongo")

	return cmd
}

func (c *CLI) runReload(ctx context.Context, sourceType, descriptor string) error {
	s, err := c.newSession(sourceType, descriptor)
	if err != nil {
		return err
	}
	defer s.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Reloading %s...", s.descriptor))
	spinner.Start()

	p := newProgress(c.Logger)
	ds, err := s.load(ctx)
	if err != nil {
		spinner.StopWithError("Reload failed")
		return err
	}

	// Scratch sync surfaces structural problems the raw data set hides.
	cv := canvas.NewMemory()
	if err := s.engine.Synchronize(ctx, cv, ds, viewstate.Empty(), viewstate.Empty()); err != nil {
		spinner.StopWithError("Synchronization failed")
		return err
	}
	spinner.Stop()

	nodes, edges := 0, 0
	for _, el := range cv.Elements() {
		if el.IsEdge() {
			edges++
		} else {
			nodes++
		}
	}
	placeholders := nodes - len(ds.Nodes)

	printSuccess("Source is healthy")
	printDetail("Type: %s", s.sourceType)
	printStats(nodes, edges, placeholders)
	p.done(fmt.Sprintf("Reloaded %s", s.descriptor))

	printNextStep("View it", fmt.Sprintf("graphview view %s", s.descriptor))
	return nil
}
