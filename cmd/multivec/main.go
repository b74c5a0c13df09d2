// Command multivec trains and queries word and sentence embeddings
// from plain-text corpora (one sentence per line).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "multivec",
		Short: "multivec - word and sentence embedding trainer",
	}

	rootCmd.AddCommand(
		trainCmd(),
		distanceCmd(),
		analogyCmd(),
		accuracyCmd(),
		sentVectorsCmd(),
		exportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
