package main

import (
	"fmt"

	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/persistence"
	"github.com/fatmas1982/multivec/pkg/vectors"
	"github.com/spf13/cobra"
)

func policyFromFlag(name string) (model.Policy, error) {
	switch name {
	case "input":
		return model.PolicyInput, nil
	case "output":
		return model.PolicyOutput, nil
	case "sum":
		return model.PolicySum, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want input, output or sum)", name)
	}
}

func distanceCmd() *cobra.Command {
	var (
		modelPath string
		policy    string
		neighbors int
	)

	cmd := &cobra.Command{
		Use:   "distance <word> [word2]",
		Short: "Cosine similarity between two words, or nearest neighbors of one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := policyFromFlag(policy)
			if err != nil {
				return err
			}
			m, err := persistence.Load(modelPath)
			if err != nil {
				return err
			}

			if len(args) == 2 {
				sim, err := vectors.Similarity(m, args[0], args[1], p)
				if err != nil {
					return err
				}
				fmt.Printf("similarity(%s, %s) = %.4f\n", args[0], args[1], sim)
				return nil
			}

			near, err := vectors.Closest(m, args[0], neighbors, p)
			if err != nil {
				return err
			}
			for _, nb := range near {
				fmt.Printf("%-24s %.4f\n", nb.Word, nb.Similarity)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.bin", "trained model file")
	cmd.Flags().StringVar(&policy, "policy", "input", "which weights to read: input, output or sum")
	cmd.Flags().IntVar(&neighbors, "n", 10, "number of neighbors to print")
	return cmd
}

func analogyCmd() *cobra.Command {
	var (
		modelPath string
		policy    string
		neighbors int
	)

	cmd := &cobra.Command{
		Use:   "analogy <a> <b> <c>",
		Short: "Answer 'a is to b as c is to ?'",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := policyFromFlag(policy)
			if err != nil {
				return err
			}
			m, err := persistence.Load(modelPath)
			if err != nil {
				return err
			}
			near, err := vectors.Analogy(m, args[0], args[1], args[2], neighbors, p)
			if err != nil {
				return err
			}
			for _, nb := range near {
				fmt.Printf("%-24s %.4f\n", nb.Word, nb.Similarity)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.bin", "trained model file")
	cmd.Flags().StringVar(&policy, "policy", "input", "which weights to read: input, output or sum")
	cmd.Flags().IntVar(&neighbors, "n", 5, "number of candidates to print")
	return cmd
}

func accuracyCmd() *cobra.Command {
	var (
		modelPath string
		policy    string
		maxVocab  int
	)

	cmd := &cobra.Command{
		Use:   "accuracy <questions-file>",
		Short: "Evaluate the model on word2vec question-words analogies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := policyFromFlag(policy)
			if err != nil {
				return err
			}
			m, err := persistence.Load(modelPath)
			if err != nil {
				return err
			}
			f, err := openArg(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := vectors.Accuracy(m, f, maxVocab, p)
			if err != nil {
				return err
			}
			if res.Seen == 0 {
				fmt.Printf("No answerable questions (%d skipped for OOV words).\n", res.Skipped)
				return nil
			}
			fmt.Printf("Accuracy: %.2f%% (%d/%d, %d skipped)\n",
				100*float64(res.Correct)/float64(res.Seen), res.Correct, res.Seen, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.bin", "trained model file")
	cmd.Flags().StringVar(&policy, "policy", "input", "which weights to read: input, output or sum")
	cmd.Flags().IntVar(&maxVocab, "max-vocab", 0, "only evaluate questions within the first N vocabulary entries (0 = all)")
	return cmd
}
