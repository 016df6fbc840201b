package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var diffSearchHex []string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the next frontier of nodes a replica claiming --search as its roots is missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closeStore, err := openDAG()
		if err != nil {
			return err
		}
		defer closeStore()

		search := make([][]byte, 0, len(diffSearchHex))
		for _, h := range diffSearchHex {
			b, err := hex.DecodeString(h)
			if err != nil {
				return fmt.Errorf("bad --search %q: %w", h, err)
			}
			search = append(search, b)
		}

		missing, err := d.FindNextNonDescendantNodes(search)
		if err != nil {
			return err
		}
		for _, n := range missing {
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(n.ID()))
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringArrayVar(&diffSearchHex, "search", nil, "hex-encoded id the other replica already has (repeatable); omit for a fresh replica")
	rootCmd.AddCommand(diffCmd)
}
