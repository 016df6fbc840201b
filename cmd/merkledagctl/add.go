package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/merkleforge/merkledag/node"
)

var addDependencyHex []string

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a content item to the DAG, deriving its id from the item and its dependencies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closeStore, err := openDAG()
		if err != nil {
			return err
		}
		defer closeStore()

		deps := make([][]byte, 0, len(addDependencyHex))
		for _, h := range addDependencyHex {
			b, err := hex.DecodeString(h)
			if err != nil {
				return fmt.Errorf("bad --dep %q: %w", h, err)
			}
			deps = append(deps, b)
		}

		id, err := d.AddNode(node.Bytes(args[0]), deps)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(id))
		return nil
	},
}

func init() {
	addCmd.Flags().StringArrayVar(&addDependencyHex, "dep", nil, "hex-encoded id of a dependency (repeatable)")
	rootCmd.AddCommand(addCmd)
}
