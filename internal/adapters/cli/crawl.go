package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

var (
	crawlURLsFile string
	crawlReset    bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [urls...]",
	Short: "Fetch, chunk and index documentation pages",
	Long: `Crawls the given URLs (or the URLs listed in --urls-file, one per
line, # starts a comment) and indexes their content for retrieval.
With --reset the knowledge base is cleared first.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlURLsFile, "urls-file", "", "file with one URL per line")
	crawlCmd.Flags().BoolVar(&crawlReset, "reset", false, "clear the knowledge base before crawling")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if services.Ingestor == nil {
		return errors.New("ingestor not configured")
	}

	urls := append([]string(nil), args...)
	if crawlURLsFile != "" {
		fromFile, err := readURLsFile(crawlURLsFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return errors.New("no URLs given: pass them as arguments or via --urls-file")
	}

	ctx := cmd.Context()
	if crawlReset {
		if err := services.Ingestor.Reset(ctx); err != nil {
			return fmt.Errorf("reset knowledge base: %w", err)
		}
		cmd.Println(warnStyle.Render("Knowledge base cleared."))
	}

	report, err := services.Ingestor.ProcessPages(ctx, urls)
	for _, page := range report.Pages {
		cmd.Println(renderPageResult(page))
	}
	if report.Interrupted {
		cmd.Println(warnStyle.Render("Interrupted before all pages were processed."))
	}
	cmd.Println(headingStyle.Render(fmt.Sprintf("Stored %d chunks from %d pages.", report.ChunksStored, len(report.Pages))))
	return err
}

func renderPageResult(page domain.PageResult) string {
	switch page.Status {
	case domain.PageStored:
		line := okStyle.Render(fmt.Sprintf("✓ %s: %d chunks", page.URL, page.ChunkCount))
		if page.EmbedSkips > 0 {
			line += warnStyle.Render(fmt.Sprintf(" (%d chunks skipped: embedding failed)", page.EmbedSkips))
		}
		if len(page.TruncatedAt) > 0 {
			line += warnStyle.Render(fmt.Sprintf(" (truncated: %s)", strings.Join(page.TruncatedAt, ", ")))
		}
		return line
	case domain.PageEmpty:
		return dimStyle.Render(fmt.Sprintf("- %s: no content", page.URL))
	case domain.PageFetchFailed:
		return errStyle.Render(fmt.Sprintf("✗ %s: fetch failed: %v", page.URL, page.Err))
	default:
		return errStyle.Render(fmt.Sprintf("✗ %s: %v", page.URL, page.Err))
	}
}

func readURLsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open urls file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls file: %w", err)
	}
	return urls, nil
}
