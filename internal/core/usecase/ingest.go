package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kirillkom/docs-qa/internal/core/domain"
	"github.com/kirillkom/docs-qa/internal/core/ports"
)

// IngestUseCase runs the chunking pipeline for documentation pages:
// fetch -> snapshot -> chunk -> embed -> persist rows + index vectors.
// Re-ingesting a URL supersedes its previous chunks wholesale.
type IngestUseCase struct {
	fetcher   ports.PageFetcher
	chunker   ports.PageChunker
	embedder  ports.Embedder
	repo      ports.ChunkRepository
	vectorDB  ports.VectorStore
	snapshots ports.SnapshotStore
}

func NewIngestUseCase(
	fetcher ports.PageFetcher,
	chunker ports.PageChunker,
	embedder ports.Embedder,
	repo ports.ChunkRepository,
	vectorDB ports.VectorStore,
	snapshots ports.SnapshotStore,
) *IngestUseCase {
	return &IngestUseCase{
		fetcher:   fetcher,
		chunker:   chunker,
		embedder:  embedder,
		repo:      repo,
		vectorDB:  vectorDB,
		snapshots: snapshots,
	}
}

// ProcessPage ingests one URL. The returned PageResult always describes the
// outcome; the error mirrors it for callers that propagate failures (queue
// redelivery, metrics). A fetch failure means zero chunks for this URL, an
// empty page is not an error.
func (uc *IngestUseCase) ProcessPage(ctx context.Context, url string) (domain.PageResult, error) {
	result := domain.PageResult{URL: url}

	raw, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		result.Status = domain.PageFetchFailed
		result.Err = err
		return result, domain.WrapError(domain.ErrFetch, "fetch page", err)
	}

	if uc.snapshots != nil {
		if err := uc.snapshots.Save(ctx, snapshotKey(url), strings.NewReader(raw)); err != nil {
			slog.Warn("page_snapshot_failed", "url", url, "error", err)
		}
	}

	chunks, report, err := uc.chunker.ChunkPage(url, raw)
	if err != nil {
		result.Status = domain.PageFailed
		result.Err = err
		return result, fmt.Errorf("chunk page: %w", err)
	}
	if len(report.TruncatedSections) > 0 {
		result.TruncatedAt = report.TruncatedSections
		slog.Warn("section_scan_truncated", "url", url, "sections", report.TruncatedSections)
	}
	if len(chunks) == 0 {
		result.Status = domain.PageEmpty
		return result, nil
	}

	kept := make([]domain.DocumentChunk, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			result.Status = domain.PageFailed
			result.Err = err
			return result, err
		}

		vector, err := uc.embedder.EmbedText(ctx, chunk.Text)
		if err != nil {
			result.EmbedSkips++
			slog.Warn("chunk_embed_failed", "url", url, "sequence", chunk.SequenceIndex, "error", err)
			continue
		}
		kept = append(kept, chunk)
		vectors = append(vectors, vector)
	}
	if len(kept) == 0 {
		result.Status = domain.PageFailed
		result.Err = errors.New("all chunk embeddings failed")
		return result, domain.WrapError(domain.ErrTemporary, "embed chunks", result.Err)
	}

	if err := uc.repo.DeleteBySource(ctx, url); err != nil {
		return uc.failPage(result, fmt.Errorf("supersede previous chunks: %w", err))
	}
	if err := uc.vectorDB.DeleteBySource(ctx, url); err != nil {
		return uc.failPage(result, fmt.Errorf("supersede previous vectors: %w", err))
	}
	if err := uc.repo.SaveChunks(ctx, kept); err != nil {
		return uc.failPage(result, fmt.Errorf("save chunk rows: %w", err))
	}
	if err := uc.vectorDB.IndexChunks(ctx, kept, vectors); err != nil {
		return uc.failPage(result, fmt.Errorf("index chunk vectors: %w", err))
	}

	result.Status = domain.PageStored
	result.ChunkCount = len(kept)
	return result, nil
}

// ProcessPages ingests a batch sequentially. Cancellation stops the loop and
// returns the partial report; it is an error only when nothing was stored.
func (uc *IngestUseCase) ProcessPages(ctx context.Context, urls []string) (domain.IngestReport, error) {
	var report domain.IngestReport
	for _, url := range urls {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		pageResult, err := uc.ProcessPage(ctx, url)
		report.Pages = append(report.Pages, pageResult)
		if pageResult.Status == domain.PageStored {
			report.ChunksStored += pageResult.ChunkCount
		}
		if err != nil {
			slog.Warn("page_ingest_failed", "url", url, "status", pageResult.Status, "error", err)
		}
	}

	if report.Interrupted && report.ChunksStored == 0 {
		return report, ctx.Err()
	}
	return report, nil
}

// Reset clears all stored chunks and vectors ahead of a full rebuild.
func (uc *IngestUseCase) Reset(ctx context.Context) error {
	if err := uc.repo.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear chunk rows: %w", err)
	}
	if err := uc.vectorDB.Reset(ctx); err != nil {
		return fmt.Errorf("reset vector store: %w", err)
	}
	return nil
}

func (uc *IngestUseCase) failPage(result domain.PageResult, err error) (domain.PageResult, error) {
	result.Status = domain.PageFailed
	result.Err = err
	return result, err
}

// snapshotKey derives a filesystem-safe storage key from a page URL.
func snapshotKey(url string) string {
	key := strings.TrimPrefix(url, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	key = strings.Trim(key, "_")
	if key == "" {
		key = "page"
	}
	return filepath.Clean(key) + ".html"
}
