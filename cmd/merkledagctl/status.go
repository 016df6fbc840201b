package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the configured backend and a summary of the current DAG state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "backend: %s\n", cfg.Backend)
		fmt.Fprintf(out, "path: %s\n", cfg.Path)

		d, nodeCount, err := dagFromStore(st)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "roots: %d\n", d.Stats().RootCount)
		if nodeCount >= 0 {
			fmt.Fprintf(out, "nodes: %d\n", nodeCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
