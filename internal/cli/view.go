package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/statecache"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "view [source]",
		Short: "View a graph interactively",
		Long: `View a graph interactively in the terminal.

The source argument is a path to a graph JSON file, or a MongoDB connection
URI with --type mongo. When omitted, the [source] section of the config file
is used.

The viewer restores the view state persisted for this source (selection,
collapsed groups, lock) and persists it again on quit. Press r inside the
viewer to reload the data source without losing in-session adjustments.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor := ""
			if len(args) > 0 {
				descriptor = args[0]
			}
			return c.runView(cmd.Context(), sourceType, descriptor)
		},
	}

	cmd.Flags().StringVarP(&sourceType, "type", "t", "", "source type: file (default), mongo")

	return cmd
}

// runView loads the graph, restores persisted state, and hands control to
// the terminal UI. The final view state is persisted when the UI exits.
func (c *CLI) runView(ctx context.Context, sourceType, descriptor string) error {
	s, err := c.newSession(sourceType, descriptor)
	if err != nil {
		return err
	}
	defer s.Close()

	logger := loggerFromContext(ctx)
	cv := canvas.NewMemory()
	reloader := graphsync.NewReloader(s.engine, cv, logger)
	persisted := statecache.Read(s.states, ctx, s.stateKey(), viewstate.Decode, viewstate.Empty)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", s.descriptor))
	spinner.Start()
	if err := reloader.Reload(ctx, s.load, persisted); err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()

	// The fetch half runs on a command goroutine and must not touch the
	// canvas; the returned apply step runs on the event-loop goroutine.
	fetch := func(ctx context.Context) (func(context.Context) error, error) {
		fresh := statecache.Read(s.states, ctx, s.stateKey(), viewstate.Decode, viewstate.Empty)
		pending, err := reloader.Fetch(ctx, s.load)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			return pending.Apply(ctx, fresh)
		}, nil
	}

	model := newViewerModel(cv, s.descriptor, fetch)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}

	// Persist whatever the session ended with.
	vs := viewstate.Collect(cv)
	if err := statecache.Write(s.states, context.Background(), s.stateKey(), vs, viewstate.Encode); err != nil {
		printWarning("Could not persist view state: %v", err)
	}

	if m, ok := final.(viewerModel); ok && m.reloadErr != nil {
		printWarning("Last reload failed: %v", m.reloadErr)
	}
	return nil
}
