// Package model holds the request, response and persistence types shared across packages.
package model

// Document is a reference document returned by retrieval.
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// GenerationResult is the outcome of retrieve-and-generate.
type GenerationResult struct {
	Content    string     `json:"content"`
	Confidence float64    `json:"confidence"`
	Documents  []Document `json:"documents"`
	// Degraded marks the apology fallback produced when generation failed.
	Degraded bool `json:"-"`
}

// ResponseBody is the "response" object of a successful chat reply.
type ResponseBody struct {
	Content        string  `json:"content"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime float64 `json:"processing_time"`
}

// ChatResponse is the payload of a successful chat reply.
type ChatResponse struct {
	Response  ResponseBody `json:"response"`
	Documents []Document   `json:"documents"`
}

// ErrorBody is the payload of every error reply.
type ErrorBody struct {
	Error string `json:"error"`
}
