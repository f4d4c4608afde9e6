package chunking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/docs-qa/internal/core/domain"
	"github.com/kirillkom/docs-qa/internal/core/ports"
	"github.com/kirillkom/docs-qa/internal/infrastructure/markup"
)

const (
	defaultMinSectionSize   = 100
	defaultMaxSectionBlocks = 1000
)

type BuilderConfig struct {
	ChunkSize        int
	Overlap          int
	MinSectionSize   int
	MaxSectionBlocks int
	HeadingTags      []string
}

// Builder turns raw page markup into the ordered DocumentChunk sequence:
// introduction text, one run of chunks per heading section, conclusion text.
// A page with no tracked headings has its whole body chunked under the
// "Introduction" sentinel so no content is dropped.
type Builder struct {
	segmenter      *Segmenter
	minSectionSize int
	maxBlocks      int
	headingTags    []string
}

func NewBuilder(cfg BuilderConfig) *Builder {
	minSection := cfg.MinSectionSize
	if minSection <= 0 {
		minSection = defaultMinSectionSize
	}
	maxBlocks := cfg.MaxSectionBlocks
	if maxBlocks <= 0 {
		maxBlocks = defaultMaxSectionBlocks
	}
	tags := cfg.HeadingTags
	if len(tags) == 0 {
		tags = markup.DefaultHeadingTags
	}
	return &Builder{
		segmenter:      NewSegmenter(cfg.ChunkSize, cfg.Overlap),
		minSectionSize: minSection,
		maxBlocks:      maxBlocks,
		headingTags:    tags,
	}
}

func (b *Builder) ChunkPage(sourceURL, rawHTML string) ([]domain.DocumentChunk, ports.ChunkReport, error) {
	var report ports.ChunkReport
	if strings.TrimSpace(rawHTML) == "" {
		return nil, report, nil
	}

	doc, err := markup.ParseWithHeadingTags(rawHTML, b.headingTags)
	if err != nil {
		return nil, report, fmt.Errorf("chunk page %s: %w", sourceURL, err)
	}

	title := doc.Title()
	if title == "" {
		title = sourceURL
	}

	var chunks []domain.DocumentChunk
	seq := 0
	emit := func(text, headingPath string) {
		for _, piece := range b.segmenter.Segment(text) {
			chunks = append(chunks, domain.DocumentChunk{
				SourceURL:     sourceURL,
				Title:         title,
				RawContent:    rawHTML,
				SequenceIndex: seq,
				Text:          piece,
				HeadingPath:   headingPath,
			})
			seq++
		}
	}

	headings := doc.Headings()
	if len(headings) == 0 {
		body, truncated := doc.BodyText(b.maxBlocks)
		if truncated {
			report.TruncatedSections = append(report.TruncatedSections, domain.HeadingPathIntroduction)
		}
		emit(body, domain.HeadingPathIntroduction)
		return chunks, report, nil
	}

	intro, truncated := doc.IntroText(b.maxBlocks)
	if truncated {
		report.TruncatedSections = append(report.TruncatedSections, domain.HeadingPathIntroduction)
	}
	emit(intro, domain.HeadingPathIntroduction)

	for i, heading := range headings {
		if heading.Title == "" {
			continue
		}

		text, truncated := doc.SectionText(i, b.maxBlocks)
		if truncated {
			report.TruncatedSections = append(report.TruncatedSections, heading.Title)
		}
		if utf8.RuneCountInString(text) < b.minSectionSize {
			continue
		}

		emit(text, b.sectionPath(doc, heading))
	}

	conclusion, truncated := doc.ConclusionText(b.maxBlocks)
	if truncated {
		report.TruncatedSections = append(report.TruncatedSections, domain.HeadingPathConclusion)
	}
	emit(conclusion, domain.HeadingPathConclusion)

	return chunks, report, nil
}

// sectionPath is the breadcrumb of enclosing headings extended with the
// section's own title, so a titled section always has a non-empty path.
func (b *Builder) sectionPath(doc *markup.Document, heading markup.Heading) string {
	path := doc.HeadingPath(heading.Node)
	if path == "" {
		return heading.Title
	}
	return path + " > " + heading.Title
}
