package graphModels

// Document identity is the SHA-256 of the extracted content bytes, so
// re-ingesting identical content merges instead of duplicating.
type Document struct {
	Id     string `json:"id"`
	Path   string `json:"path"`
	Mime   string `json:"mime"`
	Bytes  int    `json:"bytes"`
	Status string `json:"status"`
}

const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusIngested   = "ingested"
)

// Chunk identity is the SHA-1 of "docId|order|text" - re-chunking the same
// document with the same parameters reproduces the same ids.
type Chunk struct {
	Id        string    `json:"id"`
	DocId     string    `json:"doc_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Order     int       `json:"order"`
	Tokens    int       `json:"tokens"`
	Section   *string   `json:"section,omitempty"`
	Page      *int      `json:"page,omitempty"`
}

// Person identity is the slug of the display name, so every mention of the
// same name converges on one node.
type Person struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
