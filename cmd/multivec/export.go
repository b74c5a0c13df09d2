package main

import (
	"fmt"
	"os"

	"github.com/fatmas1982/multivec/pkg/persistence"
	"github.com/fatmas1982/multivec/pkg/vectors"
	"github.com/spf13/cobra"
)

// openArg opens a file argument, mapping "-" to stdin.
func openArg(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func exportCmd() *cobra.Command {
	var (
		modelPath  string
		outputPath string
		format     string
		policy     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write word vectors to a text or binary vector file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := policyFromFlag(policy)
			if err != nil {
				return err
			}
			var f vectors.Format
			switch format {
			case "text":
				f = vectors.FormatText
			case "bin":
				f = vectors.FormatBin
			case "bin16":
				f = vectors.FormatBin16
			default:
				return fmt.Errorf("unknown format %q (want text, bin or bin16)", format)
			}

			m, err := persistence.Load(modelPath)
			if err != nil {
				return err
			}
			if err := vectors.SaveVectors(m, outputPath, f, p); err != nil {
				return err
			}
			fmt.Printf("Wrote %d vectors to %s.\n", m.Vocab().Size(), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.bin", "trained model file")
	cmd.Flags().StringVar(&outputPath, "output", "vectors.txt", "output vector file")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, bin or bin16")
	cmd.Flags().StringVar(&policy, "policy", "input", "which weights to read: input, output or sum")
	return cmd
}

func sentVectorsCmd() *cobra.Command {
	var (
		modelPath  string
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "sent-vectors",
		Short: "Export trained sentence vectors, or infer vectors for new text",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := persistence.Load(modelPath)
			if err != nil {
				return err
			}

			// Without an input file, dump the vectors trained alongside
			// the words, one row per corpus line.
			if inputPath == "" {
				if err := vectors.SaveSentVectors(m, outputPath); err != nil {
					return err
				}
				fmt.Printf("Wrote %d sentence vectors to %s.\n", m.SentWeights().Rows(), outputPath)
				return nil
			}

			in, err := openArg(inputPath)
			if err != nil {
				return err
			}
			defer in.Close()
			out, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()

			count := 0
			err = m.SentVecAll(in, func(line string, vec []float32) {
				if vec == nil {
					fmt.Fprintln(out)
					return
				}
				for i, v := range vec {
					if i > 0 {
						fmt.Fprint(out, " ")
					}
					fmt.Fprintf(out, "%g", v)
				}
				fmt.Fprintln(out)
				count++
			})
			if err != nil {
				return err
			}
			fmt.Printf("Inferred %d sentence vectors into %s.\n", count, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.bin", "trained model file")
	cmd.Flags().StringVar(&inputPath, "input", "", "infer vectors for the lines of this file instead of exporting trained ones (- for stdin)")
	cmd.Flags().StringVar(&outputPath, "output", "sent-vectors.txt", "output file")
	return cmd
}
