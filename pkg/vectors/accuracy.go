package vectors

import (
	"bufio"
	"io"
	"log"

	"github.com/fatmas1982/multivec/pkg/corpus"
	"github.com/fatmas1982/multivec/pkg/model"
)

// AccuracyResult summarizes a question-words analogy evaluation.
type AccuracyResult struct {
	Correct int
	Seen    int // questions with all four words in vocabulary
	Skipped int // questions dropped because of OOV words
}

// Accuracy evaluates the model on the word2vec question-words format:
// lines of four words "a b c d" meaning a:b :: c:d, with section
// headers starting with ":". Questions containing an out-of-vocabulary
// word are skipped. maxVocab, when positive, skips questions whose
// words fall outside the first maxVocab leaf indices. Note that leaf
// indices follow first appearance in the corpus, not frequency rank.
func Accuracy(m *model.Model, r io.Reader, maxVocab int, policy model.Policy) (AccuracyResult, error) {
	var res AccuracyResult

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words := corpus.Tokenize(scanner.Text())
		if len(words) == 0 || words[0] == ":" {
			continue
		}
		if len(words) != 4 {
			log.Printf("accuracy: skipping malformed question %q", scanner.Text())
			continue
		}

		oov := false
		for _, w := range words {
			if n := m.Vocab().Get(w); n.Unknown() || outsideVocabLimit(n.Index, maxVocab) {
				oov = true
				break
			}
		}
		if oov {
			res.Skipped++
			continue
		}

		answers, err := Analogy(m, words[0], words[1], words[2], 1, policy)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Seen++
		if len(answers) > 0 && answers[0].Word == words[3] {
			res.Correct++
		}
	}
	return res, scanner.Err()
}

func outsideVocabLimit(index int32, maxVocab int) bool {
	return maxVocab > 0 && index >= int32(maxVocab)
}
