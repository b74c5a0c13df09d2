package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/fatmas1982/multivec/pkg/model"
	"github.com/fatmas1982/multivec/pkg/persistence"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	var (
		configPath  string
		corpusPath  string
		outputPath  string
		metricsAddr string

		dimension int
		window    int
		minCount  int
		epochs    int
		threads   int
		negative  int
		alpha     float32
		subsample float32
		hs        bool
		skipGram  bool
		sentVec   bool
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from a plain-text corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := model.DefaultConfig()
			if configPath != "" {
				loaded, err := model.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			// Explicit flags override the config file.
			flagOverrides := map[string]func(){
				"dimension":   func() { cfg.Dimension = dimension },
				"window":      func() { cfg.Window = window },
				"min-count":   func() { cfg.MinCount = minCount },
				"epochs":      func() { cfg.Epochs = epochs },
				"threads":     func() { cfg.Threads = threads },
				"negative":    func() { cfg.Negative = negative },
				"alpha":       func() { cfg.Alpha = alpha },
				"subsample":   func() { cfg.Subsample = subsample },
				"hs":          func() { cfg.HierarchicalSoftmax = hs },
				"skip-gram":   func() { cfg.SkipGram = skipGram },
				"sent-vector": func() { cfg.SentVector = sentVec },
				"seed":        func() { cfg.Seed = seed },
			}
			for name, apply := range flagOverrides {
				if cmd.Flags().Changed(name) {
					apply()
				}
			}

			if metricsAddr != "" {
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					log.Printf("Serving Prometheus metrics on %s/metrics", metricsAddr)
					log.Println(http.ListenAndServe(metricsAddr, nil))
				}()
			}

			m := model.New(cfg)
			if err := m.Train(corpusPath); err != nil {
				return err
			}
			if err := persistence.Save(m, outputPath); err != nil {
				return err
			}
			fmt.Printf("Model saved to %s (%d words, dim %d).\n", outputPath, m.Vocab().Size(), cfg.Dimension)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "training corpus, one sentence per line")
	cmd.Flags().StringVar(&outputPath, "output", "model.bin", "output model file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address during training (e.g. :9100)")
	cmd.Flags().IntVar(&dimension, "dimension", 100, "embedding dimension")
	cmd.Flags().IntVar(&window, "window", 5, "context window size")
	cmd.Flags().IntVar(&minCount, "min-count", 5, "discard words seen fewer times")
	cmd.Flags().IntVar(&epochs, "epochs", 5, "training epochs")
	cmd.Flags().IntVar(&threads, "threads", 4, "worker threads")
	cmd.Flags().IntVar(&negative, "negative", 5, "negative samples per target (0 disables)")
	cmd.Flags().Float32Var(&alpha, "alpha", 0.05, "starting learning rate")
	cmd.Flags().Float32Var(&subsample, "subsample", 1e-3, "subsampling threshold (0 disables)")
	cmd.Flags().BoolVar(&hs, "hs", false, "use hierarchical softmax")
	cmd.Flags().BoolVar(&skipGram, "skip-gram", false, "use skip-gram instead of CBOW")
	cmd.Flags().BoolVar(&sentVec, "sent-vector", false, "jointly train sentence vectors")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.MarkFlagRequired("corpus")

	return cmd
}
