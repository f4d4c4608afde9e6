package ports

import (
	"context"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

// PageIngestor is the inbound contract for crawl/ingest orchestration.
type PageIngestor interface {
	ProcessPage(ctx context.Context, url string) (domain.PageResult, error)
	ProcessPages(ctx context.Context, urls []string) (domain.IngestReport, error)
	Reset(ctx context.Context) error
}

// QuestionAnswerer is the inbound contract for retrieval-augmented answering.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string, topK int) (*domain.Answer, error)
}
