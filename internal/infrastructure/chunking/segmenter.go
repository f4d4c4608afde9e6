package chunking

import "strings"

const (
	defaultChunkSize = 500
	defaultOverlap   = 50
)

// Segmenter splits text into overlapping chunks no larger than ChunkSize
// runes, preferring sentence boundaries, then word boundaries.
type Segmenter struct {
	ChunkSize int
	Overlap   int
}

func NewSegmenter(chunkSize, overlap int) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Segmenter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Segment walks the text with a sliding window. A window that does not reach
// the end of the text is cut at the last '.' inside it, falling back to the
// last space, falling back to the full window; the cursor then advances by
// max(1, cut+1-overlap), so it strictly moves forward even when the overlap
// swallows the whole cut. The final window is emitted verbatim. Every emitted
// chunk is trimmed and non-empty.
func (s *Segmenter) Segment(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				out = append(out, chunk)
			}
			break
		}

		window := runes[start:end]
		cut := lastIndexRune(window, '.')
		if cut == -1 {
			cut = lastIndexRune(window, ' ')
		}
		if cut == -1 {
			cut = len(window) - 1
		}

		if chunk := strings.TrimSpace(string(window[:cut+1])); chunk != "" {
			out = append(out, chunk)
		}

		advance := cut + 1 - s.Overlap
		if advance < 1 {
			advance = 1
		}
		start += advance
	}
	return out
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
