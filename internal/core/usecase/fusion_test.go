package usecase

import (
	"fmt"
	"testing"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

func TestFuseVariantResultsDeduplicatesAndRanks(t *testing.T) {
	shared1 := domain.RetrievedChunk{SourceURL: "u1", Text: "shared one", Similarity: 0.90}
	shared2 := domain.RetrievedChunk{SourceURL: "u2", Text: "shared two", Similarity: 0.85}

	batches := make([][]domain.RetrievedChunk, 3)
	for v := range batches {
		batch := []domain.RetrievedChunk{shared1, shared2}
		for i := 0; i < 3; i++ {
			batch = append(batch, domain.RetrievedChunk{
				SourceURL:  fmt.Sprintf("u-%d-%d", v, i),
				Text:       fmt.Sprintf("text %d %d", v, i),
				Similarity: 0.5 - float64(v)*0.1 - float64(i)*0.01,
			})
		}
		batches[v] = batch
	}

	fused := fuseVariantResults(batches, 100)
	if len(fused) != 11 { // 2 shared + 3x3 unique
		t.Fatalf("expected 11 unique chunks, got %d", len(fused))
	}
	for i := 1; i < len(fused); i++ {
		if fused[i].Similarity > fused[i-1].Similarity {
			t.Fatalf("scores not non-increasing at %d: %v > %v", i, fused[i].Similarity, fused[i-1].Similarity)
		}
	}
	if fused[0] != shared1 {
		t.Fatalf("expected highest-scored chunk first, got %+v", fused[0])
	}
}

func TestFuseVariantResultsFirstOccurrenceWins(t *testing.T) {
	first := domain.RetrievedChunk{SourceURL: "u", Text: "same", Similarity: 0.2}
	later := domain.RetrievedChunk{SourceURL: "u", Text: "same", Similarity: 0.9}

	fused := fuseVariantResults([][]domain.RetrievedChunk{{first}, {later}}, 10)
	if len(fused) != 1 {
		t.Fatalf("expected 1 chunk after dedupe, got %d", len(fused))
	}
	if fused[0].Similarity != 0.2 {
		t.Fatalf("first occurrence must win, got similarity %v", fused[0].Similarity)
	}
}

func TestFuseVariantResultsTruncatesToTopK(t *testing.T) {
	var batch []domain.RetrievedChunk
	for i := 0; i < 8; i++ {
		batch = append(batch, domain.RetrievedChunk{
			SourceURL:  fmt.Sprintf("u%d", i),
			Text:       fmt.Sprintf("t%d", i),
			Similarity: float64(i) / 10,
		})
	}

	fused := fuseVariantResults([][]domain.RetrievedChunk{batch}, 5)
	if len(fused) != 5 {
		t.Fatalf("expected top_k=5 chunks, got %d", len(fused))
	}
	if fused[0].Similarity != 0.7 {
		t.Fatalf("expected best chunk first, got %v", fused[0].Similarity)
	}
}

func TestFuseVariantResultsStableTies(t *testing.T) {
	a := domain.RetrievedChunk{SourceURL: "a", Text: "a", Similarity: 0.5}
	b := domain.RetrievedChunk{SourceURL: "b", Text: "b", Similarity: 0.5}

	fused := fuseVariantResults([][]domain.RetrievedChunk{{a}, {b}}, 10)
	if fused[0].SourceURL != "a" || fused[1].SourceURL != "b" {
		t.Fatalf("tie order not stable: %+v", fused)
	}
}
