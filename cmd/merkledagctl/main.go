// Command merkledagctl is a small operator tool over a local Merkle DAG
// store: add content, inspect the root frontier, and list the nodes a
// replica with given root ids is missing, the way a replication driver
// would.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
