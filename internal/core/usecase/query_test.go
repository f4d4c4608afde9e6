package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

type embedderFake struct {
	calls   []string
	failFor string
	err     error
}

func (f *embedderFake) EmbedText(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.failFor != "" && strings.Contains(text, f.failFor) {
		return nil, errors.New("embed fail")
	}
	return []float32{0.1, 0.2}, nil
}

type vectorStoreFake struct {
	limit    int
	searches int
	hits     []domain.RetrievedChunk
	err      error
}

func (f *vectorStoreFake) IndexChunks(context.Context, []domain.DocumentChunk, [][]float32) error {
	return nil
}

func (f *vectorStoreFake) Search(_ context.Context, _ []float32, limit int) ([]domain.RetrievedChunk, error) {
	f.searches++
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *vectorStoreFake) DeleteBySource(context.Context, string) error { return nil }

func (f *vectorStoreFake) Reset(context.Context) error { return nil }

type generatorFake struct {
	called bool
	chunks []domain.RetrievedChunk
	err    error
}

func (f *generatorFake) GenerateAnswer(_ context.Context, _ string, chunks []domain.RetrievedChunk) (string, error) {
	f.called = true
	f.chunks = chunks
	if f.err != nil {
		return "", f.err
	}
	return "answer", nil
}

// cancellingEmbedder cancels the request context after a fixed number of
// embeddings, simulating a client that gives up mid-retrieval.
type cancellingEmbedder struct {
	cancel context.CancelFunc
	after  int
	calls  int
}

func (f *cancellingEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	f.calls++
	if f.calls == f.after {
		f.cancel()
	}
	return []float32{0.1, 0.2}, nil
}

func TestAnswerDefaultTopK(t *testing.T) {
	vector := &vectorStoreFake{hits: []domain.RetrievedChunk{{SourceURL: "u", Text: "t", Similarity: 0.7}}}
	uc := NewAnswerUseCase(&embedderFake{}, vector, &generatorFake{}, DefaultExpansionTables(), 0)

	answer, err := uc.Answer(context.Background(), "What is an agent?", 0)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if vector.limit != 5 {
		t.Fatalf("expected default top_k=5, got %d", vector.limit)
	}
	if answer.Text != "answer" {
		t.Fatalf("answer text = %q", answer.Text)
	}
	if len(answer.Variants) == 0 || answer.Variants[len(answer.Variants)-1] != "what is an agent?" {
		t.Fatalf("variants missing original fallback: %v", answer.Variants)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("expected fused single source, got %d", len(answer.Sources))
	}
}

func TestAnswerUsesConfiguredDefaultTopK(t *testing.T) {
	vector := &vectorStoreFake{hits: []domain.RetrievedChunk{{SourceURL: "u", Text: "t", Similarity: 0.7}}}
	uc := NewAnswerUseCase(&embedderFake{}, vector, &generatorFake{}, DefaultExpansionTables(), 3)

	if _, err := uc.Answer(context.Background(), "What is an agent?", 0); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if vector.limit != 3 {
		t.Fatalf("expected configured top_k=3, got %d", vector.limit)
	}

	// A request-supplied top_k still wins over the configured default.
	if _, err := uc.Answer(context.Background(), "What is an agent?", 7); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if vector.limit != 7 {
		t.Fatalf("expected request top_k=7, got %d", vector.limit)
	}
}

func TestAnswerCancelledMidRetrievalReturnsPartialSources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder := &cancellingEmbedder{cancel: cancel, after: 1}
	vector := &vectorStoreFake{hits: []domain.RetrievedChunk{{SourceURL: "u", Text: "t", Similarity: 0.9}}}
	gen := &generatorFake{}
	uc := NewAnswerUseCase(embedder, vector, gen, DefaultExpansionTables(), 0)

	answer, err := uc.Answer(ctx, "What is an agent?", 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if answer == nil || len(answer.Sources) != 1 {
		t.Fatalf("expected partial sources alongside the cancellation, got %+v", answer)
	}
	if gen.called {
		t.Fatalf("generator must not run with a cancelled context")
	}
	if vector.searches != 1 {
		t.Fatalf("retrieval must stop after cancellation, searches = %d", vector.searches)
	}
}

func TestAnswerSearchesEveryVariant(t *testing.T) {
	embedder := &embedderFake{}
	vector := &vectorStoreFake{}
	uc := NewAnswerUseCase(embedder, vector, &generatorFake{}, DefaultExpansionTables(), 0)

	if _, err := uc.Answer(context.Background(), "How does deploy work?", 3); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	wantVariants := len(ExpandQuestion(DefaultExpansionTables(), "How does deploy work?"))
	if vector.searches != wantVariants {
		t.Fatalf("expected %d searches, got %d", wantVariants, vector.searches)
	}
}

func TestAnswerSkipsFailingVariant(t *testing.T) {
	embedder := &embedderFake{failFor: "In the context of"}
	vector := &vectorStoreFake{hits: []domain.RetrievedChunk{{SourceURL: "u", Text: "t", Similarity: 0.4}}}
	uc := NewAnswerUseCase(embedder, vector, &generatorFake{}, DefaultExpansionTables(), 0)

	answer, err := uc.Answer(context.Background(), "What is an agent?", 4)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(answer.Sources) == 0 {
		t.Fatalf("expected retrieval to continue past the failed variant")
	}
}

func TestAnswerAllVariantsFail(t *testing.T) {
	uc := NewAnswerUseCase(&embedderFake{err: errors.New("down")}, &vectorStoreFake{}, &generatorFake{}, DefaultExpansionTables(), 0)
	if _, err := uc.Answer(context.Background(), "What is an agent?", 4); err == nil {
		t.Fatalf("expected total failure when every variant fails")
	}
}

func TestAnswerEmptyQuestion(t *testing.T) {
	uc := NewAnswerUseCase(&embedderFake{}, &vectorStoreFake{}, &generatorFake{}, DefaultExpansionTables(), 0)
	_, err := uc.Answer(context.Background(), "  ", 4)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestAnswerGeneratorError(t *testing.T) {
	vector := &vectorStoreFake{hits: []domain.RetrievedChunk{{SourceURL: "u", Text: "t"}}}
	uc := NewAnswerUseCase(&embedderFake{}, vector, &generatorFake{err: errors.New("llm down")}, DefaultExpansionTables(), 0)
	if _, err := uc.Answer(context.Background(), "What is an agent?", 2); err == nil {
		t.Fatalf("expected generation error to propagate")
	}
}
