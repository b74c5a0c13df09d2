package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. Words Processed (Counter)
	// Total tokens consumed by the training workers; the same quantity
	// that drives the learning-rate decay.
	WordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multivec_training_words_total",
			Help: "Total number of corpus tokens processed during training",
		},
	)

	// 2. Sentences Processed (Counter)
	SentencesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multivec_training_sentences_total",
			Help: "Total number of corpus lines processed during training",
		},
	)

	// 3. Epochs Completed (Counter)
	EpochsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multivec_training_epochs_total",
			Help: "Number of completed training epochs",
		},
	)

	// 4. Current Learning Rate (Gauge)
	// Tracks the decayed alpha; useful to spot a run hitting the floor.
	CurrentAlpha = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "multivec_training_alpha",
			Help: "Current decayed learning rate",
		},
	)

	// 5. Vocabulary Size (Gauge)
	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "multivec_vocabulary_size",
			Help: "Number of words in the vocabulary after pruning",
		},
	)
)
