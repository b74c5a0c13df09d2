package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write corpus: %v", err)
	}
	return path
}

func TestChunkifyBoundaries(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("some words on a line that has a reasonable length\n")
	}
	content := sb.String()
	path := writeCorpus(t, content)

	offsets, err := Chunkify(path, 4)
	if err != nil {
		t.Fatalf("Chunkify failed: %v", err)
	}
	if len(offsets) != 5 {
		t.Fatalf("Expected 5 offsets for 4 chunks, got %d", len(offsets))
	}
	if offsets[0] != 0 {
		t.Errorf("First offset must be 0, got %d", offsets[0])
	}
	if offsets[4] != int64(len(content)) {
		t.Errorf("Last offset must be the file size %d, got %d", len(content), offsets[4])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			t.Errorf("Offsets must be nondecreasing: offsets[%d]=%d < offsets[%d]=%d",
				i, offsets[i], i-1, offsets[i-1])
		}
		// Every interior boundary falls immediately after a line end.
		if offsets[i] > 0 && offsets[i] < int64(len(content)) && content[offsets[i]-1] != '\n' {
			t.Errorf("Boundary %d at %d is not at a line start", i, offsets[i])
		}
	}
}

func TestChunkifySingleChunk(t *testing.T) {
	path := writeCorpus(t, "a b c\nd e f\n")
	offsets, err := Chunkify(path, 1)
	if err != nil {
		t.Fatalf("Chunkify failed: %v", err)
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 12 {
		t.Fatalf("Expected [0 12], got %v", offsets)
	}
}

func TestChunkifyMoreChunksThanLines(t *testing.T) {
	path := writeCorpus(t, "just one line\n")
	offsets, err := Chunkify(path, 8)
	if err != nil {
		t.Fatalf("Chunkify failed: %v", err)
	}
	if len(offsets) != 9 {
		t.Fatalf("Expected 9 offsets, got %d", len(offsets))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			t.Errorf("Offsets must be nondecreasing, got %v", offsets)
		}
	}
	// Duplicate/empty chunks are fine; out of range is not.
	if offsets[8] != 14 {
		t.Errorf("Last offset must be the file size 14, got %d", offsets[8])
	}
}

func TestChunkifyInvalidCount(t *testing.T) {
	path := writeCorpus(t, "a\n")
	if _, err := Chunkify(path, 0); err == nil {
		t.Fatal("Expected an error for n=0")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The Cat  sat .\t")
	want := []string{"the", "cat", "sat", "."}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
