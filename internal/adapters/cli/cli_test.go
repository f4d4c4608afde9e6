package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

type ingestorStub struct {
	reset  int
	report domain.IngestReport
	urls   []string
}

func (s *ingestorStub) ProcessPage(context.Context, string) (domain.PageResult, error) {
	return domain.PageResult{}, nil
}

func (s *ingestorStub) ProcessPages(_ context.Context, urls []string) (domain.IngestReport, error) {
	s.urls = urls
	return s.report, nil
}

func (s *ingestorStub) Reset(context.Context) error {
	s.reset++
	return nil
}

type answererStub struct {
	answer *domain.Answer
	err    error
	calls  int
}

func (s *answererStub) Answer(context.Context, string, int) (*domain.Answer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

type repoStub struct {
	stats []domain.SourceStat
}

func (s repoStub) SaveChunks(context.Context, []domain.DocumentChunk) error { return nil }

func (s repoStub) DeleteBySource(context.Context, string) error { return nil }

func (s repoStub) ClearAll(context.Context) error { return nil }

func (s repoStub) SourceStats(context.Context) ([]domain.SourceStat, error) {
	return s.stats, nil
}

func runCLIWithInput(t *testing.T, svc Services, input string, args ...string) (string, error) {
	t.Helper()
	rootCmd.SetIn(strings.NewReader(input))
	t.Cleanup(func() { rootCmd.SetIn(nil) })
	return runCLI(t, svc, args...)
}

func runCLI(t *testing.T, svc Services, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		crawlURLsFile = ""
		crawlReset = false
		askTopK = 0
		askVerbose = false
	})
	err := Execute(context.Background(), svc)
	return buf.String(), err
}

func TestCrawlCommandProcessesArgsAndFile(t *testing.T) {
	urlsFile := filepath.Join(t.TempDir(), "urls.txt")
	content := "# docs\nhttps://docs.example.com/b\n\nhttps://docs.example.com/c\n"
	if err := os.WriteFile(urlsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write urls file: %v", err)
	}

	ingestor := &ingestorStub{report: domain.IngestReport{
		Pages: []domain.PageResult{
			{URL: "https://docs.example.com/a", Status: domain.PageStored, ChunkCount: 4},
			{URL: "https://docs.example.com/b", Status: domain.PageFetchFailed, Err: errors.New("status 404")},
			{URL: "https://docs.example.com/c", Status: domain.PageEmpty},
		},
		ChunksStored: 4,
	}}

	out, err := runCLI(t, Services{Ingestor: ingestor},
		"crawl", "https://docs.example.com/a", "--urls-file", urlsFile)
	if err != nil {
		t.Fatalf("crawl error = %v", err)
	}
	if len(ingestor.urls) != 3 {
		t.Fatalf("urls = %v", ingestor.urls)
	}
	if ingestor.reset != 0 {
		t.Fatalf("reset must not run without --reset")
	}
	if !strings.Contains(out, "4 chunks") || !strings.Contains(out, "fetch failed") || !strings.Contains(out, "no content") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCrawlResetFlag(t *testing.T) {
	ingestor := &ingestorStub{}
	_, err := runCLI(t, Services{Ingestor: ingestor},
		"crawl", "https://docs.example.com/a", "--reset")
	if err != nil {
		t.Fatalf("crawl error = %v", err)
	}
	if ingestor.reset != 1 {
		t.Fatalf("reset calls = %d", ingestor.reset)
	}
}

func TestCrawlWithoutURLsFails(t *testing.T) {
	if _, err := runCLI(t, Services{Ingestor: &ingestorStub{}}, "crawl"); err == nil {
		t.Fatalf("expected error when no URLs given")
	}
}

func TestAskPrintsAnswerAndSources(t *testing.T) {
	answer := &domain.Answer{
		Text: "Use the deploy command.",
		Sources: []domain.RetrievedChunk{
			{SourceURL: "https://docs.example.com/deploy", HeadingPath: "Deploy", Similarity: 0.88},
		},
		Variants: []string{"how to release"},
	}

	out, err := runCLI(t, Services{Answerer: &answererStub{answer: answer}},
		"ask", "how", "do", "I", "deploy?", "--verbose")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "Use the deploy command.") {
		t.Fatalf("answer missing:\n%s", out)
	}
	if !strings.Contains(out, "https://docs.example.com/deploy") {
		t.Fatalf("source missing:\n%s", out)
	}
	if !strings.Contains(out, "how to release") {
		t.Fatalf("variants missing in verbose mode:\n%s", out)
	}
}

func TestAskRendersRetrievalAnalysisTable(t *testing.T) {
	answer := &domain.Answer{
		Text: "Agents automate tasks.",
		Sources: []domain.RetrievedChunk{
			{SourceURL: "https://docs.example.com/agents", HeadingPath: "Agents > Overview", Text: "An agent is an automation.", Similarity: 0.88},
			{SourceURL: "https://docs.example.com/intro", Text: "Welcome.", Similarity: 0.5},
		},
	}

	out, err := runCLI(t, Services{Answerer: &answererStub{answer: answer}}, "ask", "what", "is", "an", "agent?")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "SCORE") || !strings.Contains(out, "PATH") || !strings.Contains(out, "PREVIEW") {
		t.Fatalf("analysis table headers missing:\n%s", out)
	}
	if !strings.Contains(out, "88.0%") || !strings.Contains(out, "Agents > Overview") {
		t.Fatalf("analysis row missing:\n%s", out)
	}
	if !strings.Contains(out, "No path") {
		t.Fatalf("empty heading path must render as No path:\n%s", out)
	}
}

func TestAskInteractiveSessionAnswersUntilExit(t *testing.T) {
	stub := &answererStub{answer: &domain.Answer{Text: "An agent automates work."}}

	out, err := runCLIWithInput(t, Services{Answerer: stub},
		"what is an agent?\n\nexit\n", "ask")
	if err != nil {
		t.Fatalf("interactive ask error = %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected 1 answered question, got %d", stub.calls)
	}
	if !strings.Contains(out, "An agent automates work.") {
		t.Fatalf("answer missing:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("session must close on exit:\n%s", out)
	}
}

func TestAskInteractiveSessionContinuesPastErrors(t *testing.T) {
	stub := &answererStub{err: errors.New("retrieval down")}

	out, err := runCLIWithInput(t, Services{Answerer: stub},
		"first question\nsecond question\nquit\n", "ask")
	if err != nil {
		t.Fatalf("interactive ask error = %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected both questions attempted, got %d", stub.calls)
	}
	if !strings.Contains(out, "retrieval down") {
		t.Fatalf("per-question error missing:\n%s", out)
	}
}

func TestPreviewTextTruncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got := previewText(long)
	if len([]rune(got)) != previewRunes+3 {
		t.Fatalf("preview length = %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("preview must end with ellipsis: %q", got)
	}
	if short := previewText("  compact   text "); short != "compact text" {
		t.Fatalf("whitespace not collapsed: %q", short)
	}
}

func TestSourcesListsStats(t *testing.T) {
	repo := repoStub{stats: []domain.SourceStat{
		{SourceURL: "https://docs.example.com/a", Title: "A", Chunks: 9},
	}}

	out, err := runCLI(t, Services{Repo: repo}, "sources")
	if err != nil {
		t.Fatalf("sources error = %v", err)
	}
	if !strings.Contains(out, "https://docs.example.com/a") || !strings.Contains(out, "9") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
