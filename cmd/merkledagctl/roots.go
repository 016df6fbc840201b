package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List the current root frontier: ids that nothing else in the DAG depends on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closeStore, err := openDAG()
		if err != nil {
			return err
		}
		defer closeStore()

		for _, id := range d.GetRoots() {
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(id))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rootsCmd)
}
