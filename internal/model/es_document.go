package model

// EsDocument is a reference document chunk stored in Elasticsearch.
type EsDocument struct {
	VectorID    string                 `json:"vector_id"` // <source>_<chunkID>
	Source      string                 `json:"source"`
	ChunkID     int                    `json:"chunk_id"`
	TextContent string                 `json:"text_content"`
	Vector      []float32              `json:"vector"`
	Model       string                 `json:"model_version"`
	Metadata    map[string]interface{} `json:"metadata"`
}
