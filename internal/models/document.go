package models

import "time"

// Document is an ingested financial document: the stored upload plus its
// extracted text, chunked for retrieval.
type Document struct {
	ID         string    `json:"id" badgerhold:"key"`
	Name       string    `json:"name"`
	Path       string    `json:"path"` // on-disk location of the original upload
	Text       string    `json:"text"`
	Chunks     []string  `json:"chunks"`
	Pages      int       `json:"pages"`
	SHA256     string    `json:"sha256" badgerhold:"index"`
	UploadedAt time.Time `json:"uploaded_at" badgerhold:"index"`
}

// SearchResult is one hit returned by the web search collaborator.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
