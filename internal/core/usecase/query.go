package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/docs-qa/internal/core/domain"
	"github.com/kirillkom/docs-qa/internal/core/ports"
)

const defaultTopK = 5

// AnswerUseCase runs the retrieval pipeline: expand the question into query
// variants, retrieve top-k chunks per variant, fuse and deduplicate, then
// compose a grounded answer from the fused context.
type AnswerUseCase struct {
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	generator ports.AnswerGenerator
	tables    ExpansionTables
	defaultK  int
}

// NewAnswerUseCase builds the pipeline. defaultK is the deployment-configured
// top-k used when a request does not carry its own; non-positive values fall
// back to the built-in default.
func NewAnswerUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	generator ports.AnswerGenerator,
	tables ExpansionTables,
	defaultK int,
) *AnswerUseCase {
	if defaultK <= 0 {
		defaultK = defaultTopK
	}
	return &AnswerUseCase{
		embedder:  embedder,
		vectorDB:  vectorDB,
		generator: generator,
		tables:    tables,
		defaultK:  defaultK,
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", fmt.Errorf("empty question"))
	}
	if topK <= 0 {
		topK = uc.defaultK
	}

	variants := ExpandQuestion(uc.tables, question)

	batches := make([][]domain.RetrievedChunk, 0, len(variants))
	failed := 0
	for _, variant := range variants {
		// Keep whatever was already retrieved when the request is cancelled.
		if ctx.Err() != nil {
			break
		}

		vector, err := uc.embedder.EmbedText(ctx, variant)
		if err != nil {
			failed++
			slog.Warn("variant_embed_failed", "variant", variant, "error", err)
			continue
		}

		hits, err := uc.vectorDB.Search(ctx, vector, topK)
		if err != nil {
			failed++
			slog.Warn("variant_search_failed", "variant", variant, "error", err)
			continue
		}
		batches = append(batches, hits)
	}

	if len(batches) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("retrieve context: all %d query variants failed", failed)
	}

	fused := fuseVariantResults(batches, topK)

	// A cancelled request still surfaces what retrieval already gathered,
	// so callers can show the partial context next to the error.
	if err := ctx.Err(); err != nil {
		return &domain.Answer{Sources: fused, Variants: variants}, err
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, fused)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:     answerText,
		Sources:  fused,
		Variants: variants,
	}, nil
}
