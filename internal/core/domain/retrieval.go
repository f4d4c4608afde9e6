package domain

// RetrievedChunk is a DocumentChunk annotated with a cosine-derived
// similarity in [0,1]. Request-scoped, never persisted.
type RetrievedChunk struct {
	SourceURL   string  `json:"source_url"`
	Title       string  `json:"title"`
	ChunkIndex  int     `json:"chunk_index"`
	Text        string  `json:"text"`
	HeadingPath string  `json:"heading_path"`
	Similarity  float64 `json:"similarity"`
}

// Answer is the composed response to a question, together with the fused
// sources it was grounded in and the query variants used for retrieval.
type Answer struct {
	Text     string           `json:"text"`
	Sources  []RetrievedChunk `json:"sources"`
	Variants []string         `json:"variants"`
}
