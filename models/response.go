package models

// SearchResult is the response for POST /search.
type SearchResult struct {
	// Results is the newline-joined concatenation of all non-empty text
	// fragments extracted from the results page, in engine-specific
	// fragment order (selector order, then element order). Empty when no
	// selector matched anything.
	Results string `json:"results"`

	// Links holds result URLs in page order, bounded by the requested
	// link count.
	Links []string `json:"links"`

	// Images holds image source URLs in page order. Hard-capped by the
	// configured maximum; empty unless images were requested.
	Images []string `json:"images"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	ActiveSearches int    `json:"active_searches"`
	Version        string `json:"version"`
}
