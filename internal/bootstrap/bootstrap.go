package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/docs-qa/internal/config"
	"github.com/kirillkom/docs-qa/internal/core/ports"
	"github.com/kirillkom/docs-qa/internal/core/usecase"
	"github.com/kirillkom/docs-qa/internal/infrastructure/chunking"
	"github.com/kirillkom/docs-qa/internal/infrastructure/fetcher"
	"github.com/kirillkom/docs-qa/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/docs-qa/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docs-qa/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/docs-qa/internal/infrastructure/resilience"
	"github.com/kirillkom/docs-qa/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/docs-qa/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Repo     *postgres.ChunkRepository
	IngestUC ports.PageIngestor
	AnswerUC ports.QuestionAnswerer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewChunkRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	snapshots, err := localfs.New(cfg.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("init snapshot storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init crawl queue: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	pageFetcher := fetcher.New(fetcher.Options{
		RequestTimeout:     cfg.FetchTimeout(),
		RequestsPerSecond:  cfg.FetchRequestsPerSec,
		Burst:              cfg.FetchBurst,
		MaxBodyBytes:       cfg.FetchMaxBodyBytes,
		ResilienceExecutor: executor,
	})

	chunker := chunking.NewBuilder(chunking.BuilderConfig{
		ChunkSize:        cfg.ChunkSize,
		Overlap:          cfg.ChunkOverlap,
		MinSectionSize:   cfg.MinSectionSize,
		MaxSectionBlocks: cfg.MaxSectionBlocks,
		HeadingTags:      splitHeadingTags(cfg.HeadingTags),
	})

	tables, err := usecase.LoadExpansionTablesFile(cfg.ExpansionTablesPath)
	if err != nil {
		return nil, fmt.Errorf("load expansion tables: %w", err)
	}

	ingestUC := usecase.NewIngestUseCase(pageFetcher, chunker, embedder, repo, vectorDB, snapshots)
	answerUC := usecase.NewAnswerUseCase(embedder, vectorDB, generator, tables, cfg.RAGTopK)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC: ingestUC,
		AnswerUC: answerUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func splitHeadingTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.ToLower(strings.TrimSpace(part)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
