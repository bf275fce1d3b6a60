package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// stateCommand creates the persisted view-state management command.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage persisted view state",
	}

	cmd.AddCommand(c.stateListCommand())
	cmd.AddCommand(c.stateClearCommand())
	cmd.AddCommand(c.statePathCommand())

	return cmd
}

// stateListCommand creates the "state list" subcommand.
func (c *CLI) stateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted view-state entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newStore()
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			keys, err := store.Keys(cmd.Context())
			if err != nil {
				return fmt.Errorf("list entries: %w", err)
			}
			if len(keys) == 0 {
				printInfo("No persisted view state")
				return nil
			}
			for _, key := range keys {
				printDetail("%s", key)
			}
			printInfo("%d entries", len(keys))
			return nil
		},
	}
}

// stateClearCommand creates the "state clear" subcommand.
func (c *CLI) stateClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all persisted view-state entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newStore()
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			keys, err := store.Keys(cmd.Context())
			if err != nil {
				return fmt.Errorf("list entries: %w", err)
			}

			count := 0
			for _, key := range keys {
				if err := store.Delete(cmd.Context(), key); err != nil {
					printWarning("Could not delete %s: %v", key, err)
					continue
				}
				count++
			}

			printSuccess("Cleared %d entries", count)
			return nil
		},
	}
}

// statePathCommand creates the "state path" subcommand.
func (c *CLI) statePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the state directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Storage.Backend == "redis" {
				printInfo("State is stored in redis at %s", c.Config.Storage.Redis.Addr)
				return nil
			}
			dir := c.Config.Storage.Dir
			if dir == "" {
				var err error
				dir, err = stateDir()
				if err != nil {
					return fmt.Errorf("get state dir: %w", err)
				}
			}
			fmt.Println(dir)
			return nil
		},
	}
}
