/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/munindb/munin/pkg/snapshot"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot-dir>",
	Short: "List the contents of a snapshot image",
	Long: `Inspect a snapshot image without loading it into a store.

Prints the manifest followed by one line per record.

Example:
  munin inspect ./snap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, entries, err := snapshot.List(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		cmd.Printf("Snapshot:   %s\n", manifest.ID)
		cmd.Printf("Created:    %s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		cmd.Printf("Geometry:   page_size=%d max_recids=%d arena_size=%d\n",
			manifest.PageSize, manifest.MaxRecids, manifest.ArenaSize)
		cmd.Printf("Records:    %d\n", manifest.Records)

		if len(entries) > 0 {
			cmd.Println()
			cmd.Printf("%-12s %s\n", "RECID", "SIZE")
			for _, e := range entries {
				cmd.Printf("%-12d %d\n", e.Recid, e.Size)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
