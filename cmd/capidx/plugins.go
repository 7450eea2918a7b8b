package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arkohut/pensieve/internal/plugins"
	"github.com/arkohut/pensieve/internal/types"
)

var pluginsNotifyFlag bool

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage plugins and inspect processing status",
}

var pluginsPendingCmd = &cobra.Command{
	Use:   "pending <entity-id>",
	Short: "List plugins not yet recorded as processed for an entity, optionally dispatching their webhooks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q: %w", args[0], err)
		}

		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entity, err := store.GetEntity(ctx, entityID)
		if err != nil {
			return fmt.Errorf("fetching entity %d: %w", entityID, err)
		}

		pending, err := store.GetPendingPlugins(ctx, entityID, entity.LibraryID)
		if err != nil {
			return fmt.Errorf("listing pending plugins: %w", err)
		}
		if len(pending) == 0 {
			fmt.Println("no pending plugins")
			return nil
		}
		for _, p := range pending {
			fmt.Printf("%d\t%s\t%s\n", p.ID, p.Name, p.WebhookURL)
		}

		if !pluginsNotifyFlag {
			return nil
		}
		dispatcher := plugins.NewDispatcher()
		if err := dispatcher.NotifyAll(ctx, pending, entity); err != nil {
			return fmt.Errorf("notifying plugins: %w", err)
		}
		for _, p := range pending {
			if err := store.RecordProcessed(ctx, entityID, p.ID); err != nil {
				return fmt.Errorf("recording %s processed: %w", p.Name, err)
			}
		}
		fmt.Printf("notified and recorded %d plugin(s)\n", len(pending))
		return nil
	},
}

var pluginsCreateLibraryFlag int64

var pluginsCreateCmd = &cobra.Command{
	Use:   "create <name> <webhook-url>",
	Short: "Register a plugin and bind it to a library",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.CreatePlugin(ctx, types.Plugin{Name: args[0], WebhookURL: args[1]})
		if err != nil {
			return fmt.Errorf("creating plugin: %w", err)
		}
		if pluginsCreateLibraryFlag != 0 {
			if err := store.BindPlugin(ctx, pluginsCreateLibraryFlag, p.ID); err != nil {
				return fmt.Errorf("binding plugin %d to library %d: %w", p.ID, pluginsCreateLibraryFlag, err)
			}
		}
		fmt.Printf("created plugin %d: %s\n", p.ID, p.Name)
		return nil
	},
}

func init() {
	pluginsPendingCmd.Flags().BoolVar(&pluginsNotifyFlag, "notify", false, "dispatch webhooks and mark plugins processed")
	pluginsCreateCmd.Flags().Int64Var(&pluginsCreateLibraryFlag, "library-id", 0, "bind the new plugin to this library")
	pluginsCmd.AddCommand(pluginsPendingCmd, pluginsCreateCmd)
}
