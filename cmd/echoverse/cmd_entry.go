package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var entryFlags struct {
	user  string
	title string
	file  string
	topK  int
}

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage stored journal entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Store an entry, analyze it and refresh the identity's mood blob",
	RunE: func(cmd *cobra.Command, args []string) error {
		if entryFlags.user == "" {
			return fmt.Errorf("--user is required")
		}
		text, err := readText(args, entryFlags.file)
		if err != nil {
			return err
		}
		svc, store, err := openService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		entry, analysis, err := svc.AddEntry(cmd.Context(), entryFlags.user, entryFlags.title, text)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"entry":    entry,
			"analysis": analysis,
		})
	},
}

var entrySimilarCmd = &cobra.Command{
	Use:   "similar <entry-id>",
	Short: "List the identity's entries with the closest emotion vectors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("entry id must be a positive integer")
		}
		svc, store, err := openService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		similar, err := svc.Similar(cmd.Context(), id, entryFlags.topK)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), similar)
	},
}

func init() {
	add := entryAddCmd.Flags()
	add.StringVarP(&entryFlags.user, "user", "u", "", "Identity that owns the entry (required)")
	add.StringVar(&entryFlags.title, "title", "", "Entry title")
	add.StringVarP(&entryFlags.file, "file", "f", "", `Read the entry from a file ("-" for stdin)`)

	entrySimilarCmd.Flags().IntVarP(&entryFlags.topK, "top", "k", 5, "Number of entries to return")

	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entrySimilarCmd)
}

