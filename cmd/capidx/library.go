package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage libraries",
}

var libraryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		lib, err := store.CreateLibrary(ctx, args[0])
		if err != nil {
			return fmt.Errorf("creating library: %w", err)
		}
		fmt.Printf("created library %d: %s\n", lib.ID, lib.Name)
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List libraries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		libs, err := store.ListLibraries(ctx)
		if err != nil {
			return fmt.Errorf("listing libraries: %w", err)
		}
		for _, l := range libs {
			fmt.Printf("%d\t%s\n", l.ID, l.Name)
		}
		return nil
	},
}

func init() {
	libraryCmd.AddCommand(libraryCreateCmd, libraryListCmd)
}
