package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

// PageFetcher retrieves raw markup for a documentation page. Failures carry
// a typed error so callers can tell them apart from empty pages.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageChunker turns raw markup into an ordered chunk sequence for one page.
// The returned report names sections whose body scan hit the block cap.
type PageChunker interface {
	ChunkPage(sourceURL, rawHTML string) ([]domain.DocumentChunk, ChunkReport, error)
}

// ChunkReport surfaces non-fatal conditions observed while chunking a page.
type ChunkReport struct {
	TruncatedSections []string
}

// Embedder builds a fixed-length vector for one text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunk vectors and performs nearest-neighbor search.
// Search results come back ordered by similarity descending.
type VectorStore interface {
	IndexChunks(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
	DeleteBySource(ctx context.Context, sourceURL string) error
	Reset(ctx context.Context) error
}

// ChunkRepository persists chunk rows for provenance and stats.
type ChunkRepository interface {
	SaveChunks(ctx context.Context, chunks []domain.DocumentChunk) error
	DeleteBySource(ctx context.Context, sourceURL string) error
	ClearAll(ctx context.Context) error
	SourceStats(ctx context.Context) ([]domain.SourceStat, error)
}

// SnapshotStore keeps raw fetched markup for debugging and reprocessing.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// CrawlQueue publishes/consumes per-URL crawl requests.
type CrawlQueue interface {
	PublishCrawlRequest(ctx context.Context, url string) error
	SubscribeCrawlRequests(ctx context.Context, handler func(context.Context, string) error) error
}

// AnswerGenerator composes the final user-facing answer from fused context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error)
}
