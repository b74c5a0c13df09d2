package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Chunkify divides a file into n byte ranges of near-equal size, each
// boundary snapped forward to the start of the next line. It returns
// n+1 offsets: offsets[0] is always 0 and offsets[n] is the file size,
// so chunk i is the half-open range [offsets[i], offsets[i+1]).
//
// Because every interior boundary falls immediately after a line
// terminator, no two chunks ever share a line: a reader that starts at
// offsets[i] and stops once it reaches offsets[i+1] sees whole lines
// only. When the file holds fewer lines than n, the trailing chunks
// collapse to empty ranges (duplicate offsets), which callers must
// tolerate.
func Chunkify(path string, n int) ([]int64, error) {
	if n < 1 {
		return nil, fmt.Errorf("chunkify: invalid chunk count %d", n)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chunkify: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("chunkify: %w", err)
	}
	size := info.Size()

	offsets := make([]int64, 0, n+1)
	offsets = append(offsets, 0)

	r := bufio.NewReader(f)
	var pos int64
	for i := 1; i < n; i++ {
		// Ideal split point for the i-th boundary, then advance to the
		// first line start at or after it.
		target := size * int64(i) / int64(n)
		for pos < target {
			line, err := r.ReadBytes('\n')
			pos += int64(len(line))
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("chunkify: %w", err)
			}
		}
		if pos > size {
			pos = size
		}
		offsets = append(offsets, pos)
	}
	offsets = append(offsets, size)
	return offsets, nil
}
