package usecase

import (
	"sort"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

// fuseVariantResults merges per-variant retrieval results into one ranked
// set: chunks are accumulated in encounter order, deduplicated by
// (source URL, text) with the first occurrence winning regardless of later
// scores, stably sorted by similarity descending, and truncated to topK.
func fuseVariantResults(batches [][]domain.RetrievedChunk, topK int) []domain.RetrievedChunk {
	seen := make(map[fusionKey]struct{})
	out := make([]domain.RetrievedChunk, 0, topK)

	for _, batch := range batches {
		for _, chunk := range batch {
			key := fusionKey{url: chunk.SourceURL, text: chunk.Text}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, chunk)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

type fusionKey struct {
	url  string
	text string
}
