package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

// ChunkRepository keeps the canonical chunk rows. The vector store holds the
// embeddings; these rows are the source of truth for provenance and stats.
type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS doc_chunks (
	id BIGSERIAL PRIMARY KEY,
	source_url TEXT NOT NULL,
	title TEXT NOT NULL,
	sequence_index INTEGER NOT NULL,
	chunk_text TEXT NOT NULL,
	heading_path TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_doc_chunks_source_url ON doc_chunks(source_url);
CREATE UNIQUE INDEX IF NOT EXISTS idx_doc_chunks_source_seq ON doc_chunks(source_url, sequence_index);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveChunks inserts a page's chunks in one transaction so a partially
// written page never becomes visible.
func (r *ChunkRepository) SaveChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO doc_chunks (source_url, title, sequence_index, chunk_text, heading_path)
VALUES ($1,$2,$3,$4,$5)
`
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, query,
			chunk.SourceURL, chunk.Title, chunk.SequenceIndex, chunk.Text, chunk.HeadingPath,
		); err != nil {
			return fmt.Errorf("insert chunk %s#%d: %w", chunk.SourceURL, chunk.SequenceIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) DeleteBySource(ctx context.Context, sourceURL string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM doc_chunks WHERE source_url = $1`, sourceURL); err != nil {
		return fmt.Errorf("delete chunks for source: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE doc_chunks RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	return nil
}

// SourceStats reports chunk counts per indexed page, newest page title wins.
func (r *ChunkRepository) SourceStats(ctx context.Context) ([]domain.SourceStat, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source_url, max(title), count(*)
FROM doc_chunks
GROUP BY source_url
ORDER BY source_url
`)
	if err != nil {
		return nil, fmt.Errorf("query source stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.SourceStat
	for rows.Next() {
		var stat domain.SourceStat
		if err := rows.Scan(&stat.SourceURL, &stat.Title, &stat.Chunks); err != nil {
			return nil, fmt.Errorf("scan source stat: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source stats: %w", err)
	}
	return stats, nil
}
