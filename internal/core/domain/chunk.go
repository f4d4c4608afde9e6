package domain

// DocumentChunk is a contiguous, heading-scoped span of page text prepared
// for embedding. Chunks are immutable after creation; re-ingesting a source
// replaces its chunks wholesale rather than patching them.
type DocumentChunk struct {
	SourceURL     string `json:"source_url"`
	Title         string `json:"title"`
	RawContent    string `json:"-"`
	SequenceIndex int    `json:"sequence_index"`
	Text          string `json:"text"`
	HeadingPath   string `json:"heading_path"`
}

// Sentinel heading paths for text outside any heading section.
const (
	HeadingPathIntroduction = "Introduction"
	HeadingPathConclusion   = "Conclusion"
)

// PageStatus describes the outcome of ingesting a single page.
type PageStatus string

const (
	PageStored      PageStatus = "stored"
	PageEmpty       PageStatus = "empty"
	PageFetchFailed PageStatus = "fetch_failed"
	PageFailed      PageStatus = "failed"
)

// PageResult reports what happened to one URL during ingestion. Err is set
// only for the failure statuses, so callers can tell a page that legitimately
// produced zero chunks from one that could not be fetched or processed.
type PageResult struct {
	URL         string     `json:"url"`
	Status      PageStatus `json:"status"`
	ChunkCount  int        `json:"chunk_count"`
	EmbedSkips  int        `json:"embed_skips,omitempty"`
	TruncatedAt []string   `json:"truncated_sections,omitempty"`
	Err         error      `json:"-"`
}

// IngestReport aggregates a batch ingestion run. When the batch is cancelled
// mid-way the report carries everything accumulated up to that point.
type IngestReport struct {
	Pages        []PageResult `json:"pages"`
	ChunksStored int          `json:"chunks_stored"`
	Interrupted  bool         `json:"interrupted"`
}

// SourceStat summarizes stored chunks for one source URL.
type SourceStat struct {
	SourceURL string `json:"source_url"`
	Title     string `json:"title"`
	Chunks    int    `json:"chunks"`
}
