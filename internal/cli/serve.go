package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphview/internal/api"
	"github.com/matzehuels/graphview/pkg/buildinfo"
	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/statecache"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sourceType string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the graph over HTTP",
		Long: `Serve a graph over HTTP.

The API exposes the live graph (GET /api/graph), its view state
(GET/PUT /api/viewstate), reloads (POST /api/reload), and snapshot exports
(GET /api/export.svg, /api/export.dot). The view state persisted for this
source is applied at startup and on every reload.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor := ""
			if len(args) > 0 {
				descriptor = args[0]
			}
			return c.runServe(cmd.Context(), sourceType, descriptor, addr)
		},
	}

	cmd.Flags().StringVarP(&sourceType, "type", "t", "", "source type: file (default), mongo")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, sourceType, descriptor, addr string) error {
	s, err := c.newSession(sourceType, descriptor)
	if err != nil {
		return err
	}
	defer s.Close()

	if addr == "" {
		addr = c.Config.Serve.Addr
	}

	cv := canvas.NewMemory()
	reloader := graphsync.NewReloader(s.engine, cv, c.Logger)
	persisted := statecache.Read(s.states, ctx, s.stateKey(), viewstate.Decode, viewstate.Empty)
	if err := reloader.Reload(ctx, s.load, persisted); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	srv := api.NewServer(api.Config{
		Canvas:   cv,
		Reloader: reloader,
		Load:     s.load,
		States:   s.states,
		StateKey: s.stateKey(),
		Version:  buildinfo.Version,
		Logger:   c.Logger,
	})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	printSuccess("Serving %s", s.descriptor)
	printKeyValue("Address", "http://"+displayAddr(addr))
	printNextStep("Graph", fmt.Sprintf("curl http://%s/api/graph", displayAddr(addr)))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// displayAddr turns a listen address into something curl-able.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
